// Package i18n exposes the supported locales and carries the request printer
// through contexts so components can localize without an HTTP dependency.
package i18n

import (
	"context"

	"github.com/louisbranch/iconhost/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	supportedTags = catalog.Default().Tags()
	tagMatcher    = language.NewMatcher(supportedTags)
)

type printerKey struct{}

// SupportedTags returns the locales that have message catalogs.
func SupportedTags() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// DefaultTag returns the base locale tag.
func DefaultTag() language.Tag {
	return supportedTags[0]
}

// ParseTag parses value and reports whether it names a supported locale.
func ParseTag(value string) (language.Tag, bool) {
	parsed, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, false
	}
	for _, tag := range supportedTags {
		if tag == parsed {
			return tag, true
		}
	}
	return language.Tag{}, false
}

// MatchTags returns the supported locale closest to the preferred tags.
func MatchTags(preferred []language.Tag) language.Tag {
	_, index, confidence := tagMatcher.Match(preferred...)
	if confidence == language.No {
		return DefaultTag()
	}
	return supportedTags[index]
}

// WithPrinter returns a context carrying printer.
func WithPrinter(ctx context.Context, printer *message.Printer) context.Context {
	if printer == nil {
		return ctx
	}
	return context.WithValue(ctx, printerKey{}, printer)
}

// PrinterFromContext returns the context printer, or a base-locale printer.
func PrinterFromContext(ctx context.Context) *message.Printer {
	if ctx != nil {
		if printer, ok := ctx.Value(printerKey{}).(*message.Printer); ok && printer != nil {
			return printer
		}
	}
	return message.NewPrinter(DefaultTag())
}
