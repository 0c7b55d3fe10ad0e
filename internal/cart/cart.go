// Package cart owns the authoritative in-memory cart and mirrors every
// mutation into the persisted store under the shared "cart" key.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/campuskart/storefront/internal/catalog"
	pkgerrors "github.com/campuskart/storefront/pkg/errors"
	"github.com/campuskart/storefront/pkg/kvstore"
	"github.com/campuskart/storefront/pkg/logger"
)

// LineItem is one distinct product entry plus its quantity. JSON field
// names match the persisted cart format consumed by the cart page.
type LineItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Price     int    `json:"price"`
	Condition string `json:"condition"`
	Category  string `json:"category"`
	Icon      string `json:"icon"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
	AddedAt   string `json:"addedAt"`
}

// Totals summarises the cart. Missing prices and quantities count as 0.
type Totals struct {
	Subtotal          int
	ItemCount         int
	FormattedSubtotal string
}

// Outcome reports which path Add took.
type Outcome string

const (
	OutcomeAdded       Outcome = "added"
	OutcomeIncremented Outcome = "incremented"
)

// Service exposes the cart operations. Ordering is insertion order; at most
// one line exists per product id.
type Service interface {
	Hydrate(ctx context.Context)
	Add(ctx context.Context, p catalog.Product) Outcome
	Totals() Totals
	Contains(id string) bool
	Items() []LineItem
	Len() int
	Replace(items []LineItem)
	Reset(ctx context.Context)
}

type service struct {
	mu    sync.Mutex
	items []LineItem
	store kvstore.Store
	logg  *logger.Logger
	now   func() time.Time
}

func NewService(store kvstore.Store, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{store: store, logg: logg, now: time.Now}, nil
}

// Hydrate derives the in-memory cart from the persisted value. Absence and
// parse failures both yield an empty cart; neither is surfaced.
func (s *service) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Get(ctx, kvstore.KeyCart)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logg.Warn(s.logg.WithStoreKey(ctx, kvstore.KeyCart), "reading persisted cart failed, starting fresh")
		}
		s.items = nil
		return
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logg.Warn(s.logg.WithStoreKey(ctx, kvstore.KeyCart), "persisted cart is malformed, starting fresh")
		s.items = nil
		return
	}
	s.items = items
}

// Add increments the existing line for the product id or appends a new one
// with quantity 1, then persists the full cart. Repeated adds for one id
// never create a second line.
func (s *service) Add(ctx context.Context, p catalog.Product) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := OutcomeAdded
	found := false
	for i := range s.items {
		if s.items[i].ID == p.ID {
			s.items[i].Quantity++
			outcome = OutcomeIncremented
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, LineItem{
			ID:        p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Condition: p.Condition,
			Category:  p.Category,
			Icon:      p.Icon,
			Image:     p.Image,
			Quantity:  1,
			AddedAt:   s.now().UTC().Format(time.RFC3339),
		})
	}

	s.persistLocked(ctx)
	return outcome
}

func (s *service) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subtotal, count int
	for _, item := range s.items {
		subtotal += item.Price * item.Quantity
		count += item.Quantity
	}
	return Totals{
		Subtotal:          subtotal,
		ItemCount:         count,
		FormattedSubtotal: FormatINR(subtotal),
	}
}

func (s *service) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func (s *service) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Replace swaps the in-memory cart for a snapshot received from another
// session. It deliberately does not persist: echoing the write back would
// loop the change feed.
func (s *service) Replace(items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// Reset empties the cart and removes the persisted entry.
func (s *service) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err := s.store.Delete(ctx, kvstore.KeyCart); err != nil {
		s.logg.Error(s.logg.WithStoreKey(ctx, kvstore.KeyCart), "removing persisted cart failed", err)
	}
}

// persistLocked writes the cart best-effort. Failures are logged, never
// returned: the in-memory state remains authoritative for the session.
func (s *service) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.logg.Error(s.logg.WithStoreKey(ctx, kvstore.KeyCart), "encoding cart failed", err)
		return
	}
	if err := s.store.Set(ctx, kvstore.KeyCart, string(data)); err != nil {
		s.logg.Error(s.logg.WithStoreKey(ctx, kvstore.KeyCart), "persisting cart failed", err)
	}
}
