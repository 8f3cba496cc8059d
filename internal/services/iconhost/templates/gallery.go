package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// GalleryItem is one icon slot in the gallery.
type GalleryItem struct {
	Name        string
	Label       string
	Description string
	SVGURL      string
	// Icon renders the icon view for this slot.
	Icon templ.Component
}

// GalleryLinks points at the catalog views.
type GalleryLinks struct {
	Catalog         string
	CatalogMarkdown string
}

// Gallery renders every item as a captioned figure.
func Gallery(items []GalleryItem, links GalleryLinks, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var head strings.Builder
		head.WriteString(`<header class="mb-6 flex items-baseline justify-between"><h1 class="text-2xl font-semibold">`)
		head.WriteString(templ.EscapeString(T(loc, "icons.gallery.title")))
		head.WriteString(`</h1><nav class="flex gap-4 text-sm">`)
		if links.Catalog != "" {
			head.WriteString(`<a href="` + templ.EscapeString(links.Catalog) + `">` + templ.EscapeString(T(loc, "icons.link.catalog")) + `</a>`)
		}
		if links.CatalogMarkdown != "" {
			head.WriteString(`<a href="` + templ.EscapeString(links.CatalogMarkdown) + `">` + templ.EscapeString(T(loc, "icons.link.markdown")) + `</a>`)
		}
		head.WriteString(`</nav></header>`)
		if len(items) == 0 {
			head.WriteString(`<p class="text-slate-500">` + templ.EscapeString(T(loc, "icons.gallery.empty")) + `</p>`)
			_, err := io.WriteString(w, head.String())
			return err
		}
		head.WriteString(`<ul class="grid grid-cols-2 gap-4 sm:grid-cols-4 lg:grid-cols-6">`)
		if _, err := io.WriteString(w, head.String()); err != nil {
			return err
		}

		for _, item := range items {
			label := item.Label
			if label == "" {
				label = item.Name
			}
			open := `<li class="rounded border border-slate-200 bg-white p-4"`
			if item.Description != "" {
				open += ` title="` + templ.EscapeString(item.Description) + `"`
			}
			open += `><figure class="flex flex-col items-center gap-2">`
			if _, err := io.WriteString(w, open); err != nil {
				return err
			}
			if item.Icon != nil {
				if err := item.Icon.Render(ctx, w); err != nil {
					return err
				}
			}
			var caption strings.Builder
			caption.WriteString(`<figcaption class="text-center text-sm"><span class="block">` + templ.EscapeString(label) + `</span>`)
			caption.WriteString(`<code class="text-xs text-slate-500">` + templ.EscapeString(item.Name) + `</code>`)
			if item.SVGURL != "" {
				caption.WriteString(` <a class="text-xs" href="` + templ.EscapeString(item.SVGURL) + `">` + templ.EscapeString(T(loc, "icons.link.svg")) + `</a>`)
			}
			caption.WriteString(`</figcaption></figure></li>`)
			if _, err := io.WriteString(w, caption.String()); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
}

// CatalogDocument wraps pre-rendered catalog HTML.
func CatalogDocument(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<article class="prose">`); err != nil {
			return err
		}
		if err := templ.Raw(html).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</article>`)
		return err
	})
}
