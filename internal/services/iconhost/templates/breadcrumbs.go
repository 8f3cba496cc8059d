package templates

import (
	"net/url"
	"strings"
)

// BreadcrumbItem represents one breadcrumb entry in a page trail.
type BreadcrumbItem struct {
	// Label is the visible breadcrumb text.
	Label string
	// URL is the optional destination; the current page has none.
	URL string
}

// BuildBreadcrumbs builds the trail for an iconhost request path. Known
// segments are localized; icon names are shown unescaped.
func BuildBreadcrumbs(path string, loc Localizer) []BreadcrumbItem {
	cleanPath := strings.Trim(strings.TrimSpace(path), "/")
	if cleanPath == "" {
		return []BreadcrumbItem{}
	}

	var segments []string
	for _, segment := range strings.Split(cleanPath, "/") {
		if segment = strings.TrimSpace(segment); segment != "" {
			segments = append(segments, segment)
		}
	}
	if len(segments) < 2 {
		return []BreadcrumbItem{}
	}

	breadcrumbs := make([]BreadcrumbItem, 0, len(segments))
	pathSoFar := ""
	for idx, segment := range segments {
		pathSoFar += "/" + segment
		item := BreadcrumbItem{Label: segmentLabel(idx, segment, loc)}
		if idx < len(segments)-1 {
			item.URL = pathSoFar
			if idx == 0 {
				item.URL += "/"
			}
		}
		breadcrumbs = append(breadcrumbs, item)
	}
	return breadcrumbs
}

func segmentLabel(idx int, segment string, loc Localizer) string {
	switch {
	case idx == 0 && segment == "icons":
		return T(loc, "icons.gallery.title")
	case idx == 1 && segment == "catalog":
		return T(loc, "icons.link.catalog")
	case segment == "svg":
		return T(loc, "icons.link.svg")
	}
	if unescaped, err := url.PathUnescape(segment); err == nil {
		return unescaped
	}
	return segment
}
