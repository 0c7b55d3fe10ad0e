// Package nav names the page's exit points. Navigation is the engine's only
// call into the rest of the site; routing itself is an external collaborator.
package nav

import (
	"context"

	"github.com/campuskart/storefront/pkg/logger"
)

const (
	PathLanding      = "index.html"
	PathLogin        = "login.html"
	PathLoginForSell = "login.html?redirect=sell"
	PathListing      = "listing.html"
	PathCart         = "cart.html"
)

// RedirectSell is the query value that sends a fresh login into the sell flow.
const RedirectSell = "sell"

type Navigator interface {
	Navigate(path string)
}

type logNavigator struct {
	logg *logger.Logger
}

// NewLogNavigator returns a Navigator that records each departure in the
// log; the hosting page performs the actual transition.
func NewLogNavigator(logg *logger.Logger) Navigator {
	return &logNavigator{logg: logg}
}

func (n *logNavigator) Navigate(path string) {
	ctx := n.logg.WithField(context.Background(), "path", path)
	n.logg.Info(ctx, "navigate")
}
