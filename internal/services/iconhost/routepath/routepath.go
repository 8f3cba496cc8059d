// Package routepath owns the iconhost URL layout.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root            = "/"
	Health          = "/healthz"
	IconsPrefix     = "/icons/"
	Catalog         = "/icons/catalog"
	CatalogMarkdown = "/icons/catalog.md"
)

// Icon returns the settled fragment route for name.
func Icon(name string) string {
	return IconsPrefix + url.PathEscape(name)
}

// IconWithStyle returns the fragment route for name with a style query.
func IconWithStyle(name, style string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		return Icon(name)
	}
	return Icon(name) + "?" + url.Values{"style": {style}}.Encode()
}

// IconSVG returns the raw SVG route for name.
func IconSVG(name string) string {
	return Icon(name) + "/svg"
}
