package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// setStyle rewrites one declaration inside the selection's inline style
// attribute, preserving the order of the others.
func setStyle(sel *goquery.Selection, prop, value string) {
	if sel.Length() == 0 {
		return
	}

	type decl struct{ name, value string }
	var decls []decl
	for _, part := range strings.Split(sel.AttrOr("style", ""), ";") {
		name, val, ok := strings.Cut(part, ":")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		decls = append(decls, decl{strings.TrimSpace(name), strings.TrimSpace(val)})
	}

	replaced := false
	for i := range decls {
		if strings.EqualFold(decls[i].name, prop) {
			decls[i].value = value
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, decl{prop, value})
	}

	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.name+": "+d.value)
	}
	sel.SetAttr("style", strings.Join(parts, "; "))
}

// getStyle returns one declaration's value from the inline style attribute.
func getStyle(sel *goquery.Selection, prop string) string {
	if sel.Length() == 0 {
		return ""
	}
	for _, part := range strings.Split(sel.AttrOr("style", ""), ";") {
		name, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), prop) {
			return strings.TrimSpace(val)
		}
	}
	return ""
}
