// Package session owns the locally persisted identity record. Presence of a
// decodable "user" entry in the store is the authentication predicate;
// there are no tokens to validate.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/campuskart/storefront/internal/nav"
	pkgerrors "github.com/campuskart/storefront/pkg/errors"
	"github.com/campuskart/storefront/pkg/kvstore"
	"github.com/campuskart/storefront/pkg/logger"
)

// User is the canonical persisted identity shape. All fields are optional
// except Initials, which is always populated.
type User struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Year      string `json:"year"`
	RollNo    string `json:"rollNo"`
	Phone     string `json:"phone"`
	Hostel    string `json:"hostel"`
	Initials  string `json:"initials"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RawUser accepts the field-name spellings produced by the login and signup
// pages before normalization.
type RawUser struct {
	FullName      string `json:"fullName"`
	FullNameSnake string `json:"full_name"`
	Email         string `json:"email"`
	Year          string `json:"year"`
	RollNo        string `json:"rollNo"`
	RollNoSnake   string `json:"roll_no"`
	Phone         string `json:"phone"`
	Hostel        string `json:"hostel"`
	Initials      string `json:"initials"`
}

// Service exposes the session operations.
type Service interface {
	Hydrate(ctx context.Context)
	Current() *User
	IsAuthenticated() bool
	LoginSuccess(ctx context.Context, raw RawUser, redirect string) User
	Logout(ctx context.Context)
	Replace(u *User)
}

type service struct {
	mu    sync.Mutex
	user  *User
	store kvstore.Store
	nav   nav.Navigator
	logg  *logger.Logger
}

func NewService(store kvstore.Store, navigator nav.Navigator, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if navigator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "navigator is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{store: store, nav: navigator, logg: logg}, nil
}

// Hydrate loads the persisted identity. Absence or a malformed record both
// mean logged out.
func (s *service) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Get(ctx, kvstore.KeyUser)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logg.Warn(s.logg.WithStoreKey(ctx, kvstore.KeyUser), "reading persisted user failed")
		}
		s.user = nil
		return
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logg.Warn(s.logg.WithStoreKey(ctx, kvstore.KeyUser), "persisted user is malformed")
		s.user = nil
		return
	}
	s.user = &u
}

func (s *service) Current() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// LoginSuccess normalizes the raw record, persists it, and leaves through
// the sell flow when the redirect parameter asked for it.
func (s *service) LoginSuccess(ctx context.Context, raw RawUser, redirect string) User {
	u := Normalize(raw)

	s.mu.Lock()
	s.user = &u
	data, err := json.Marshal(u)
	if err != nil {
		s.logg.Error(s.logg.WithStoreKey(ctx, kvstore.KeyUser), "encoding user failed", err)
	} else if err := s.store.Set(ctx, kvstore.KeyUser, string(data)); err != nil {
		s.logg.Error(s.logg.WithStoreKey(ctx, kvstore.KeyUser), "persisting user failed", err)
	}
	s.mu.Unlock()

	if redirect == nav.RedirectSell {
		s.nav.Navigate(nav.PathListing)
	} else {
		s.nav.Navigate(nav.PathLanding)
	}
	return u
}

// Logout removes both the identity and the cart: the persisted cart slot is
// shared regardless of who was logged in, so it cannot outlive the session.
func (s *service) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	if err := s.store.Delete(ctx, kvstore.KeyUser); err != nil {
		s.logg.Error(s.logg.WithStoreKey(ctx, kvstore.KeyUser), "removing persisted user failed", err)
	}
	if err := s.store.Delete(ctx, kvstore.KeyCart); err != nil {
		s.logg.Error(s.logg.WithStoreKey(ctx, kvstore.KeyCart), "removing persisted cart failed", err)
	}
	s.mu.Unlock()

	s.nav.Navigate(nav.PathLanding)
}

// Replace swaps the in-memory identity for one received from another
// session. No persistence: the other tab already wrote it.
func (s *service) Replace(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// Normalize folds the accepted field spellings into the canonical shape and
// derives Initials, FirstName and LastName when absent.
func Normalize(raw RawUser) User {
	name := firstNonEmpty(raw.FullName, raw.FullNameSnake)
	tokens := strings.Fields(name)

	u := User{
		FullName: name,
		Email:    raw.Email,
		Year:     raw.Year,
		RollNo:   firstNonEmpty(raw.RollNo, raw.RollNoSnake),
		Phone:    raw.Phone,
		Hostel:   raw.Hostel,
		Initials: raw.Initials,
	}
	if u.Initials == "" {
		u.Initials = Initials(name)
	}
	if len(tokens) > 0 {
		u.FirstName = tokens[0]
		u.LastName = strings.Join(tokens[1:], " ")
	}
	return u
}

// Initials derives an uppercase monogram from the first two name tokens,
// falling back to "U" for the nameless.
func Initials(fullName string) string {
	tokens := strings.Fields(fullName)
	if len(tokens) == 0 {
		return "U"
	}
	initials := firstLetterUpper(tokens[0])
	if len(tokens) > 1 {
		initials += firstLetterUpper(tokens[1])
	}
	if initials == "" {
		return "U"
	}
	return initials
}

func firstLetterUpper(token string) string {
	runes := []rune(token)
	if len(runes) == 0 {
		return ""
	}
	return strings.ToUpper(string(runes[0]))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
