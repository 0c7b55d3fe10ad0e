// Package page projects cart, session and theme state onto the rendered
// document and handles the page's interactions. All element lookups are
// guarded: a missing element short-circuits its feature, never fails.
package page

import (
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/campuskart/storefront/internal/cart"
	"github.com/campuskart/storefront/internal/nav"
	"github.com/campuskart/storefront/internal/session"
	"github.com/campuskart/storefront/pkg/config"
	pkgerrors "github.com/campuskart/storefront/pkg/errors"
	"github.com/campuskart/storefront/pkg/kvstore"
	"github.com/campuskart/storefront/pkg/logger"
)

// Element identifiers shared with the page markup; bit-exact contract.
const (
	selAddButtons   = ".addtocartbtn button"
	selNotification = ".cart-notification"
	idCartCount     = "#cartCount"
	idCartButton    = "#cartButton"
	idThemeIcon     = "#themeIcon"
	idUserMenu      = "#userMenu"
	idUserInitials  = "#userInitials"
	idUserDropdown  = "#userDropdown"
	idLoginBtn      = "#loginBtn"
	idSignupBtn     = "#signupBtn"
)

const (
	classHasItems = "has-items"
	classInCart   = "in-cart"
	themeLight    = "light"
	themeDark     = "dark"
)

// Params groups the controller's dependencies.
type Params struct {
	Doc       *goquery.Document
	Cart      cart.Service
	Session   session.Service
	Store     kvstore.Store
	Navigator nav.Navigator
	Logger    *logger.Logger
	Timing    config.UIConfig
}

// Controller owns the document and serializes every mutation of it. Timer
// callbacks run on their own goroutines, so the mutex stands in for the
// browser's run-to-completion event loop.
type Controller struct {
	mu        sync.Mutex
	doc       *goquery.Document
	cart      cart.Service
	session   session.Service
	store     kvstore.Store
	nav       nav.Navigator
	logg      *logger.Logger
	timing    config.UIConfig
	theme     string
	notifyGen uint64
}

func NewController(p Params) (*Controller, error) {
	if p.Doc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document is required")
	}
	if p.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	if p.Session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session service is required")
	}
	if p.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if p.Navigator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "navigator is required")
	}
	if p.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Controller{
		doc:     p.Doc,
		cart:    p.Cart,
		session: p.Session,
		store:   p.Store,
		nav:     p.Navigator,
		logg:    p.Logger,
		timing:  fillTimingDefaults(p.Timing),
		theme:   themeDark,
	}, nil
}

func fillTimingDefaults(t config.UIConfig) config.UIConfig {
	if t.ButtonCooldown == 0 {
		t.ButtonCooldown = time.Second
	}
	if t.NotificationLifetime == 0 {
		t.NotificationLifetime = 2 * time.Second
	}
	if t.NotificationFade == 0 {
		t.NotificationFade = 300 * time.Millisecond
	}
	if t.LoginRedirectDelay == 0 {
		t.LoginRedirectDelay = 1500 * time.Millisecond
	}
	return t
}
