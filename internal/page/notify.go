package page

import (
	"fmt"
	"html"
	"time"
)

// Kind selects the notification presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Fixed page messages.
const (
	MsgAddedToCart       = "Added to cart!"
	MsgQuantityIncreased = "Quantity increased!"
	MsgLoginRequired     = "Please login to add items to your cart."
)

const showDelay = 10 * time.Millisecond

// Notify displays a transient notification. At most one is visible at a
// time; a new call preempts an in-flight one rather than queuing behind it.
func (c *Controller) Notify(message string, kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifyLocked(message, kind)
}

func (c *Controller) notifyLocked(message string, kind Kind) {
	c.doc.Find(selNotification).Remove()

	c.notifyGen++
	gen := c.notifyGen

	icon := "fa-info-circle"
	if kind == KindSuccess {
		icon = "fa-check-circle"
	}

	body := c.doc.Find("body")
	if body.Length() == 0 {
		return
	}
	body.AppendHtml(fmt.Sprintf(
		`<div class="cart-notification cart-notification-%s"><div class="notification-content"><i class="fas %s"></i><span>%s</span></div></div>`,
		kind, icon, html.EscapeString(message),
	))

	time.AfterFunc(showDelay, func() {
		c.withCurrentNotification(gen, func() {
			c.doc.Find(selNotification).AddClass("show")
		})
	})
	time.AfterFunc(c.timing.NotificationLifetime, func() {
		c.withCurrentNotification(gen, func() {
			c.doc.Find(selNotification).RemoveClass("show")
		})
	})
	time.AfterFunc(c.timing.NotificationLifetime+c.timing.NotificationFade, func() {
		c.withCurrentNotification(gen, func() {
			c.doc.Find(selNotification).Remove()
		})
	})
}

// withCurrentNotification runs fn only if no newer notification has
// preempted generation gen.
func (c *Controller) withCurrentNotification(gen uint64, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notifyGen != gen {
		return
	}
	fn()
}
