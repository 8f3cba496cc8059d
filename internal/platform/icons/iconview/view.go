// Package iconview renders named icons as HTML components.
//
// An icon renders as a container tagged role="<name>Icon" holding exactly one
// of: a pulsing placeholder while the lookup is pending, the resolved SVG, or
// nothing when the lookup failed.
package iconview

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/louisbranch/iconhost/internal/platform/i18n"
	"github.com/louisbranch/iconhost/internal/platform/icons"
	"github.com/louisbranch/iconhost/internal/platform/icons/resolver"
)

// Source answers icon requests with the current resolution state.
// *resolver.Resolver satisfies it.
type Source interface {
	Request(ctx context.Context, name string) resolver.Snapshot
}

// Props configures one icon slot.
type Props struct {
	// Name is the catalog icon name.
	Name string
	// Style selects a wrapper style; unknown keys are ignored.
	Style string
	// Attrs are forwarded to the rendered <svg> and override asset attributes.
	Attrs templ.Attributes
	// LazyURL, when set, makes a pending container fetch its settled
	// replacement over htmx.
	LazyURL string
	// LazyDelay postpones the htmx fetch after the container loads.
	LazyDelay time.Duration
}

// Role returns the role attribute value for an icon name.
func Role(name string) string {
	return name + "Icon"
}

// Icon requests props.Name from source once per render and renders the
// state it reports.
func Icon(source Source, props Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		snap := resolver.Failed(props.Name)
		if source != nil {
			snap = source.Request(ctx, props.Name)
		}
		return render(ctx, w, snap, props)
	})
}

// Settled renders a snapshot obtained elsewhere without requesting anything.
func Settled(snap resolver.Snapshot, props Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return render(ctx, w, snap, props)
	})
}

func render(ctx context.Context, w io.Writer, snap resolver.Snapshot, props Props) error {
	loading := snap.Loading() || snap.Name != props.Name

	var b strings.Builder
	b.WriteString(`<div role="`)
	b.WriteString(templ.EscapeString(Role(props.Name)))
	b.WriteString(`"`)
	if loading && props.LazyURL != "" {
		b.WriteString(` hx-get="`)
		b.WriteString(templ.EscapeString(props.LazyURL))
		b.WriteString(`" hx-trigger="`)
		b.WriteString(lazyTrigger(props.LazyDelay))
		b.WriteString(`" hx-swap="outerHTML"`)
	}
	b.WriteString(`>`)

	switch {
	case loading:
		label := i18n.PrinterFromContext(ctx).Sprintf("icons.loading", props.Name)
		b.WriteString(`<span class="` + placeholderClass + `" role="status" aria-label="`)
		b.WriteString(templ.EscapeString(label))
		b.WriteString(`"></span>`)
	default:
		if asset, ok := snap.Asset(); ok {
			writeSVG(&b, asset, props)
		}
	}
	b.WriteString(`</div>`)

	_, err := io.WriteString(w, b.String())
	return err
}

func lazyTrigger(delay time.Duration) string {
	if delay <= 0 {
		return "load"
	}
	return fmt.Sprintf("load delay:%dms", delay.Milliseconds())
}

func writeSVG(b *strings.Builder, asset icons.Asset, props Props) {
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg"`)
	if _, overridden := props.Attrs["class"]; !overridden {
		writeAttr(b, "class", className(props.Style))
	}
	for _, attr := range asset.Attrs {
		if _, overridden := props.Attrs[attr.Key]; overridden {
			continue
		}
		writeAttr(b, attr.Key, attr.Value)
	}

	keys := make([]string, 0, len(props.Attrs))
	for key := range props.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !validAttrName(key) {
			continue
		}
		switch value := props.Attrs[key].(type) {
		case string:
			writeAttr(b, key, value)
		case bool:
			if value {
				b.WriteString(" " + key)
			}
		case nil:
		default:
			writeAttr(b, key, fmt.Sprint(value))
		}
	}
	b.WriteString(`>`)
	b.WriteString(asset.Body)
	b.WriteString(`</svg>`)
}

func writeAttr(b *strings.Builder, key, value string) {
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(templ.EscapeString(value))
	b.WriteString(`"`)
}

func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == ':', r == '.':
		default:
			return false
		}
	}
	return true
}
