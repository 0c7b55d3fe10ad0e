package page

import (
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/campuskart/storefront/internal/catalog"
	"github.com/campuskart/storefront/pkg/kvstore"
)

// LoadTheme applies the persisted theme. An absent or unreadable entry
// means dark.
func (c *Controller) LoadTheme(ctx context.Context) {
	value, err := c.store.Get(ctx, kvstore.KeyTheme)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		c.logg.Warn(c.logg.WithStoreKey(ctx, kvstore.KeyTheme), "reading persisted theme failed")
	}
	c.SetTheme(value)
}

// SetTheme applies the given persisted value ("light" or anything else for
// dark) to the document without writing the store. Cross-tab theme events
// land here.
func (c *Controller) SetTheme(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == themeLight {
		c.theme = themeLight
	} else {
		c.theme = themeDark
	}
	c.applyThemeLocked()
}

// ToggleTheme flips the theme, persists the choice and repaints.
func (c *Controller) ToggleTheme(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.theme == themeLight {
		c.theme = themeDark
	} else {
		c.theme = themeLight
	}
	if err := c.store.Set(ctx, kvstore.KeyTheme, c.theme); err != nil {
		c.logg.Error(c.logg.WithStoreKey(ctx, kvstore.KeyTheme), "persisting theme failed", err)
	}
	c.applyThemeLocked()
}

// Theme reports the active theme.
func (c *Controller) Theme() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

func (c *Controller) applyThemeLocked() {
	body := c.doc.Find("body")
	icon := c.doc.Find(idThemeIcon)

	if c.theme == themeLight {
		body.SetAttr("data-theme", themeLight)
		if icon.HasClass("fa-sun") {
			icon.RemoveClass("fa-sun")
			icon.AddClass("fa-moon")
		}
		return
	}

	body.RemoveAttr("data-theme")
	if icon.HasClass("fa-moon") {
		icon.RemoveClass("fa-moon")
		icon.AddClass("fa-sun")
	}
}

// Search filters the product cards against a live query. The empty query
// shows everything; matching is case-insensitive over title, category and
// condition.
func (c *Controller) Search(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(query))

	catalog.Cards(c.doc).Each(func(_ int, card *goquery.Selection) {
		title := strings.ToLower(card.Find(catalog.SelectorTitle).Text())
		category := strings.ToLower(card.Find(catalog.SelectorCategory).Text())
		condition := strings.ToLower(card.Find(catalog.SelectorCondition).Text())

		match := term == "" ||
			strings.Contains(title, term) ||
			strings.Contains(category, term) ||
			strings.Contains(condition, term)

		if match {
			setStyle(card, "display", "block")
			setStyle(card, "opacity", "1")
			setStyle(card, "transform", "scale(1)")
		} else {
			setStyle(card, "display", "none")
		}
	})
}
