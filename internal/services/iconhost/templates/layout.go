// Package templates holds the iconhost page chrome.
package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/message"
)

// AppName is the product name shown in page titles.
const AppName = "iconhost"

// Localizer formats catalog messages. *message.Printer satisfies it.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// T translates key with loc, falling back to the key itself.
func T(loc Localizer, key string, args ...any) string {
	if loc == nil {
		return key
	}
	return loc.Sprintf(key, args...)
}

// PageOptions configures the full-page layout.
type PageOptions struct {
	Title         string
	Lang          string
	HTMXScriptURL string
	Breadcrumbs   []BreadcrumbItem
}

// ComposePageTitle appends the product name to title.
func ComposePageTitle(title string) string {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return AppName
	case strings.HasSuffix(title, " | "+AppName):
		return title
	default:
		return title + " | " + AppName
	}
}

// Page renders a full HTML document around the context children.
func Page(opts PageOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := strings.TrimSpace(opts.Lang)
		if lang == "" {
			lang = "en-US"
		}
		var b strings.Builder
		b.WriteString(`<!doctype html><html lang="` + templ.EscapeString(lang) + `"><head>`)
		b.WriteString(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>` + templ.EscapeString(ComposePageTitle(opts.Title)) + `</title>`)
		if src := strings.TrimSpace(opts.HTMXScriptURL); src != "" {
			b.WriteString(`<script src="` + templ.EscapeString(src) + `" defer></script>`)
		}
		b.WriteString(`</head><body class="min-h-screen bg-slate-50 text-slate-900">`)
		writeBreadcrumbs(&b, opts.Breadcrumbs)
		b.WriteString(`<main class="mx-auto max-w-5xl p-6">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func writeBreadcrumbs(b *strings.Builder, items []BreadcrumbItem) {
	if len(items) == 0 {
		return
	}
	b.WriteString(`<nav aria-label="breadcrumb" class="breadcrumbs text-sm px-6 pt-4"><ol>`)
	for _, item := range items {
		label := templ.EscapeString(item.Label)
		if item.URL == "" {
			b.WriteString(`<li>` + label + `</li>`)
			continue
		}
		b.WriteString(`<li><a href="` + templ.EscapeString(item.URL) + `">` + label + `</a></li>`)
	}
	b.WriteString(`</ol></nav>`)
}
