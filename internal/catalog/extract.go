// Package catalog reconstructs structured product records from rendered
// marketplace card markup. The page has no product API; the document is the
// data source.
package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Selectors form the contract with the page markup and must stay bit-exact.
const (
	SelectorCard      = ".card"
	SelectorTitle     = ".product-title"
	SelectorPrice     = ".product-price"
	SelectorCondition = ".product-condition"
	SelectorCategory  = ".product-category"
	SelectorImage     = ".product-image"
	SelectorImageIcon = ".product-image i"
)

// Defaults substituted when a card is missing a sub-element.
const (
	DefaultTitle     = "Unknown Product"
	DefaultCondition = "Unknown"
	DefaultCategory  = "General"
	DefaultIcon      = "fas fa-box"
	DefaultImage     = "linear-gradient(135deg, #6366f1 0%, #8b5cf6 100%)"
)

// Product is the structured record extracted from one card.
type Product struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Price     int    `json:"price"`
	Condition string `json:"condition"`
	Category  string `json:"category"`
	Icon      string `json:"icon"`
	Image     string `json:"image"`
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonSlugRe    = regexp.MustCompile(`[^a-z0-9-]`)
	digitsRe     = regexp.MustCompile(`^\d+`)
)

// Slug derives the deterministic product id from a title: lower-cased,
// whitespace runs collapsed to hyphens, everything else stripped.
func Slug(title string) string {
	slug := strings.ToLower(title)
	slug = whitespaceRe.ReplaceAllString(slug, "-")
	return nonSlugRe.ReplaceAllString(slug, "")
}

// Cards returns every product card in the document.
func Cards(doc *goquery.Document) *goquery.Selection {
	return doc.Find(SelectorCard)
}

// Extract reads one card's sub-elements into a Product. Missing elements
// substitute documented defaults rather than failing; the result is
// deterministic for identical markup except for the time-based fallback id
// used when no usable title exists.
func Extract(card *goquery.Selection) Product {
	title := card.Find(SelectorTitle)
	price := card.Find(SelectorPrice)
	condition := card.Find(SelectorCondition)
	category := card.Find(SelectorCategory)
	icon := card.Find(SelectorImageIcon)
	image := card.Find(SelectorImage)

	p := Product{
		Title:     DefaultTitle,
		Condition: DefaultCondition,
		Category:  DefaultCategory,
		Icon:      DefaultIcon,
		Image:     DefaultImage,
	}

	if text := strings.TrimSpace(title.Text()); text != "" {
		p.Title = text
	}
	if slug := Slug(strings.TrimSpace(title.Text())); slug != "" {
		p.ID = slug
	} else {
		p.ID = fallbackID()
	}
	if price.Length() > 0 {
		p.Price = parsePrice(price.Text())
	}
	if text := strings.TrimSpace(condition.Text()); text != "" {
		p.Condition = text
	}
	if text := strings.TrimSpace(category.Text()); text != "" {
		p.Category = text
	}
	if class := icon.AttrOr("class", ""); class != "" {
		p.Icon = class
	}
	if image.Length() > 0 {
		if bg := styleProperty(image.AttrOr("style", ""), "background"); bg != "" {
			p.Image = bg
		}
	}
	return p
}

// parsePrice strips the rupee symbol and thousands separators, then parses
// the leading digit run. Anything unparseable is worth 0.
func parsePrice(text string) int {
	cleaned := strings.NewReplacer("₹", "", ",", "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)
	digits := digitsRe.FindString(cleaned)
	if digits == "" {
		return 0
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return value
}

// styleProperty pulls one declaration's value out of an inline style string.
func styleProperty(style, prop string) string {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), prop) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func fallbackID() string {
	return "item-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
