package page

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/campuskart/storefront/internal/cart"
	"github.com/campuskart/storefront/internal/catalog"
	"github.com/campuskart/storefront/internal/nav"
)

const pressFeedbackDelay = 150 * time.Millisecond

// ClickAddToCart handles an activation of the index-th add-to-cart control.
// A control under cooldown is simply inert: the second click is swallowed,
// not queued or rejected with an error.
func (c *Controller) ClickAddToCart(ctx context.Context, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	button := c.doc.Find(selAddButtons).Eq(index)
	if button.Length() == 0 {
		return
	}
	if _, disabled := button.Attr("disabled"); disabled {
		return
	}

	button.SetAttr("disabled", "disabled")
	time.AfterFunc(c.timing.ButtonCooldown, func() {
		c.mu.Lock()
		button.RemoveAttr("disabled")
		c.mu.Unlock()
	})

	if !c.session.IsAuthenticated() {
		c.notifyLocked(MsgLoginRequired, KindError)
		time.AfterFunc(c.timing.LoginRedirectDelay, func() {
			c.nav.Navigate(nav.PathLogin)
		})
		return
	}

	card := button.Closest(catalog.SelectorCard)
	if card.Length() == 0 {
		return
	}
	product := catalog.Extract(card)

	c.pressFeedbackLocked(button)

	// Already in the cart: the click becomes a navigation instead of a
	// second increment.
	if c.cart.Contains(product.ID) {
		c.nav.Navigate(nav.PathCart)
		return
	}

	outcome := c.cart.Add(ctx, product)
	if outcome == cart.OutcomeIncremented {
		c.notifyLocked(MsgQuantityIncreased, KindSuccess)
	} else {
		c.notifyLocked(MsgAddedToCart, KindSuccess)
	}
	c.paintBadgeLocked()
	c.paintButtonLocked(product.ID, true)
}

func (c *Controller) pressFeedbackLocked(button *goquery.Selection) {
	setStyle(button, "transform", "scale(0.95)")
	time.AfterFunc(pressFeedbackDelay, func() {
		c.mu.Lock()
		setStyle(button, "transform", "scale(1)")
		c.mu.Unlock()
	})
}

// ClickCartButton opens the cart page.
func (c *Controller) ClickCartButton() {
	c.nav.Navigate(nav.PathCart)
}

// ClickSell gates the sell flow behind authentication.
func (c *Controller) ClickSell() {
	if c.session.IsAuthenticated() {
		c.nav.Navigate(nav.PathListing)
		return
	}
	c.nav.Navigate(nav.PathLoginForSell)
}

// Logout tears down the session, clears the cart surfaces and returns to
// the landing page.
func (c *Controller) Logout(ctx context.Context) {
	c.session.Logout(ctx)
	c.cart.Replace(nil)

	c.mu.Lock()
	c.paintBadgeLocked()
	c.paintAllButtonsLocked()
	c.paintAuthLocked()
	c.mu.Unlock()
}

// ResetCart empties the cart and repaints every dependent surface.
func (c *Controller) ResetCart(ctx context.Context) {
	c.cart.Reset(ctx)

	c.mu.Lock()
	c.paintBadgeLocked()
	c.paintAllButtonsLocked()
	c.mu.Unlock()
}

// Snapshot is the DebugCart result.
type Snapshot struct {
	Items []cart.LineItem
	Count int
}

// DebugCart logs and returns the current cart state.
func (c *Controller) DebugCart(ctx context.Context) Snapshot {
	snap := Snapshot{
		Items: c.cart.Items(),
		Count: c.cart.Totals().ItemCount,
	}
	c.logg.Info(c.logg.WithField(ctx, "count", snap.Count), "cart snapshot")
	return snap
}
