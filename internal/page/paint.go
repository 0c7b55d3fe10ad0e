package page

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/campuskart/storefront/internal/catalog"
	"github.com/campuskart/storefront/internal/session"
)

// PaintBadge projects the current item count onto the cart indicator. A
// zero count hides the badge entirely.
func (c *Controller) PaintBadge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paintBadgeLocked()
}

func (c *Controller) paintBadgeLocked() {
	count := c.cart.Totals().ItemCount

	badge := c.doc.Find(idCartCount)
	if badge.Length() > 0 {
		badge.SetText(strconv.Itoa(count))
		if count > 0 {
			setStyle(badge, "display", "flex")
		} else {
			setStyle(badge, "display", "none")
		}
	}

	button := c.doc.Find(idCartButton)
	if button.Length() > 0 {
		if count > 0 {
			button.AddClass(classHasItems)
		} else {
			button.RemoveClass(classHasItems)
		}
	}
}

// PaintButton repaints every add-to-cart control whose card resolves to the
// given product id.
func (c *Controller) PaintButton(id string, inCart bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paintButtonLocked(id, inCart)
}

func (c *Controller) paintButtonLocked(id string, inCart bool) {
	c.doc.Find(selAddButtons).Each(func(_ int, button *goquery.Selection) {
		card := button.Closest(catalog.SelectorCard)
		if card.Length() == 0 {
			return
		}
		if catalog.Extract(card).ID != id {
			return
		}
		if inCart {
			button.SetHtml(`<i class="fas fa-check"></i> In Cart`)
			button.AddClass(classInCart)
		} else {
			button.SetHtml(`<i class="fas fa-cart-plus"></i> Add to Cart`)
			button.RemoveClass(classInCart)
		}
	})
}

// PaintAllButtons re-derives every control's product id and repaints it
// against current cart membership. Used after load, cross-tab updates and
// resets, when many buttons may be stale at once.
func (c *Controller) PaintAllButtons() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paintAllButtonsLocked()
}

func (c *Controller) paintAllButtonsLocked() {
	c.doc.Find(selAddButtons).Each(func(_ int, button *goquery.Selection) {
		card := button.Closest(catalog.SelectorCard)
		if card.Length() == 0 {
			return
		}
		id := catalog.Extract(card).ID
		c.paintButtonLocked(id, c.cart.Contains(id))
	})
}

// PaintAuth switches the header between the login/signup controls and the
// logged-in user menu.
func (c *Controller) PaintAuth() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paintAuthLocked()
}

func (c *Controller) paintAuthLocked() {
	user := c.session.Current()

	loginBtn := c.doc.Find(idLoginBtn)
	signupBtn := c.doc.Find(idSignupBtn)
	userMenu := c.doc.Find(idUserMenu)

	if user != nil {
		setStyle(loginBtn, "display", "none")
		setStyle(signupBtn, "display", "none")
		setStyle(userMenu, "display", "inline-block")

		initialsEl := c.doc.Find(idUserInitials)
		if initialsEl.Length() > 0 {
			initials := user.Initials
			if initials == "" && user.FullName != "" {
				initials = session.Initials(user.FullName)
			}
			if initials != "" {
				initialsEl.SetText(initials)
			}
		}
		return
	}

	setStyle(loginBtn, "display", "inline-block")
	setStyle(signupBtn, "display", "inline-block")
	setStyle(userMenu, "display", "none")
}

// ToggleUserDropdown flips the dropdown's visibility.
func (c *Controller) ToggleUserDropdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropdown := c.doc.Find(idUserDropdown)
	if dropdown.Length() == 0 {
		return
	}
	if getStyle(dropdown, "display") == "block" {
		setStyle(dropdown, "display", "none")
	} else {
		setStyle(dropdown, "display", "block")
	}
}

// CloseUserDropdown hides the dropdown, mirroring an outside click.
func (c *Controller) CloseUserDropdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	setStyle(c.doc.Find(idUserDropdown), "display", "none")
}
