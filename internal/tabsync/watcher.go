// Package tabsync reconciles this page session with changes made by other
// sessions of the same origin. It consumes the store's change feed and
// forwards each event to the owning service, then repaints the surfaces
// that depend on it.
package tabsync

import (
	"context"
	"encoding/json"

	"github.com/campuskart/storefront/internal/cart"
	"github.com/campuskart/storefront/internal/page"
	"github.com/campuskart/storefront/internal/session"
	pkgerrors "github.com/campuskart/storefront/pkg/errors"
	"github.com/campuskart/storefront/pkg/kvstore"
	"github.com/campuskart/storefront/pkg/logger"
)

// Params carries the watcher's collaborators.
type Params struct {
	Store   kvstore.Store
	Cart    cart.Service
	Session session.Service
	Page    *page.Controller
	Logger  *logger.Logger
}

// Watcher applies cross-session change events to the local page state.
type Watcher struct {
	store   kvstore.Store
	cart    cart.Service
	session session.Service
	page    *page.Controller
	logg    *logger.Logger
}

func NewWatcher(p Params) (*Watcher, error) {
	if p.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tabsync: store is required")
	}
	if p.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tabsync: cart service is required")
	}
	if p.Session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tabsync: session service is required")
	}
	if p.Page == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tabsync: page controller is required")
	}
	if p.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tabsync: logger is required")
	}
	return &Watcher{
		store:   p.Store,
		cart:    p.Cart,
		session: p.Session,
		page:    p.Page,
		logg:    p.Logger,
	}, nil
}

// Run consumes the change feed until ctx is cancelled or the feed closes.
// The feed already excludes this session's own writes, so every event here
// is foreign state that simply replaces the local copy.
func (w *Watcher) Run(ctx context.Context) error {
	events, err := w.store.Watch(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "tabsync: opening change feed")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.apply(ctx, ev)
		}
	}
}

func (w *Watcher) apply(ctx context.Context, ev kvstore.Event) {
	lctx := w.logg.WithStoreKey(ctx, ev.Key)

	switch ev.Key {
	case kvstore.KeyCart:
		w.cart.Replace(w.decodeCart(lctx, ev))
		w.page.PaintBadge()
		w.page.PaintAllButtons()
		w.logg.Info(lctx, "cart reconciled from another session")
	case kvstore.KeyUser:
		w.session.Replace(w.decodeUser(lctx, ev))
		w.page.PaintAuth()
		w.logg.Info(lctx, "session reconciled from another session")
	case kvstore.KeyTheme:
		value := ev.NewValue
		if ev.Deleted {
			value = ""
		}
		w.page.SetTheme(value)
		w.logg.Info(lctx, "theme reconciled from another session")
	}
}

// decodeCart mirrors the hydration rules: a deleted or malformed payload
// becomes the empty cart rather than an error.
func (w *Watcher) decodeCart(ctx context.Context, ev kvstore.Event) []cart.LineItem {
	if ev.Deleted || ev.NewValue == "" {
		return nil
	}
	var items []cart.LineItem
	if err := json.Unmarshal([]byte(ev.NewValue), &items); err != nil {
		w.logg.Warn(ctx, "discarding malformed cart payload from another session")
		return nil
	}
	return items
}

func (w *Watcher) decodeUser(ctx context.Context, ev kvstore.Event) *session.User {
	if ev.Deleted || ev.NewValue == "" {
		return nil
	}
	var raw session.RawUser
	if err := json.Unmarshal([]byte(ev.NewValue), &raw); err != nil {
		w.logg.Warn(ctx, "discarding malformed user payload from another session")
		return nil
	}
	u := session.Normalize(raw)
	return &u
}
