package icons

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

const svgNamespace = "http://www.w3.org/2000/svg"

var (
	// ErrNotFound reports that no catalog entry matches the requested name.
	ErrNotFound = errors.New("icon not found")
	// ErrInvalidSVG reports that an icon payload is not a usable SVG document.
	ErrInvalidSVG = errors.New("invalid svg")
)

// Attr is a single root attribute of an SVG asset.
type Attr struct {
	Key   string
	Value string
}

// Asset is a parsed SVG icon ready for rendering.
//
// Attrs holds the root <svg> attributes in document order, except xmlns and
// class, which renderers control. Body is the raw inner markup.
type Asset struct {
	Name    string
	ViewBox string
	Attrs   []Attr
	Body    string
}

// Attr returns the value of a root attribute.
func (a Asset) Attr(key string) (string, bool) {
	for _, attr := range a.Attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Document renders the asset as a standalone SVG document.
func (a Asset) Document() []byte {
	var buf bytes.Buffer
	buf.WriteString(`<svg xmlns="` + svgNamespace + `"`)
	for _, attr := range a.Attrs {
		buf.WriteString(" ")
		buf.WriteString(attr.Key)
		buf.WriteString(`="`)
		buf.WriteString(html.EscapeString(attr.Value))
		buf.WriteString(`"`)
	}
	buf.WriteString(">")
	buf.WriteString(a.Body)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// The HTML tokenizer lowercases attribute names; SVG attributes are
// case-sensitive, so the camel-cased ones are restored here.
var svgAttrCase = map[string]string{
	"viewbox":             "viewBox",
	"preserveaspectratio": "preserveAspectRatio",
	"baseprofile":         "baseProfile",
}

var forbiddenElements = map[string]struct{}{
	"script":           {},
	"foreignobject":    {},
	"iframe":           {},
	"style":            {},
	"set":              {},
	"animate":          {},
	"animatetransform": {},
	"animatemotion":    {},
}

// URL-bearing attributes, plus the animation value attributes that can
// retarget one at runtime.
var urlAttrs = map[string]struct{}{
	"href":       {},
	"xlink:href": {},
	"src":        {},
	"to":         {},
	"from":       {},
	"values":     {},
}

// ParseSVG parses an SVG document into an Asset.
//
// Scripts, style sheets, animation elements, foreign objects, inline event
// handlers and script URLs are rejected so catalog assets can be embedded into
// pages verbatim.
func ParseSVG(name string, data []byte) (Asset, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))
	asset := Asset{Name: name}
	var body strings.Builder
	depth := 0
	found := false

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(tokenizer.Err(), io.EOF) {
				if !found {
					return Asset{}, fmt.Errorf("%w: %s: missing <svg> root", ErrInvalidSVG, name)
				}
				return Asset{}, fmt.Errorf("%w: %s: unterminated <svg> root", ErrInvalidSVG, name)
			}
			return Asset{}, fmt.Errorf("%w: %s: %v", ErrInvalidSVG, name, tokenizer.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			// Token lowercases names in place, so keep the raw bytes first.
			raw := append([]byte(nil), tokenizer.Raw()...)
			token := tokenizer.Token()
			if err := checkToken(name, token); err != nil {
				return Asset{}, err
			}
			if depth == 0 {
				if token.Data != "svg" {
					return Asset{}, fmt.Errorf("%w: %s: root element is <%s>", ErrInvalidSVG, name, token.Data)
				}
				found = true
				asset.Attrs = rootAttrs(token.Attr)
				asset.ViewBox, _ = asset.Attr("viewBox")
				if tt == html.SelfClosingTagToken {
					return asset, nil
				}
				depth = 1
				continue
			}
			if token.Data == "svg" && tt == html.StartTagToken {
				depth++
			}
			body.Write(raw)
		case html.EndTagToken:
			if depth == 0 {
				continue
			}
			raw := append([]byte(nil), tokenizer.Raw()...)
			token := tokenizer.Token()
			if token.Data == "svg" {
				depth--
				if depth == 0 {
					asset.Body = strings.TrimSpace(body.String())
					return asset, nil
				}
			}
			body.Write(raw)
		default:
			if depth > 0 {
				body.Write(tokenizer.Raw())
			}
		}
	}
}

func checkToken(name string, token html.Token) error {
	if _, ok := forbiddenElements[token.Data]; ok {
		return fmt.Errorf("%w: %s: <%s> is not allowed", ErrInvalidSVG, name, token.Data)
	}
	for _, attr := range token.Attr {
		key := strings.ToLower(attr.Key)
		if strings.HasPrefix(key, "on") {
			return fmt.Errorf("%w: %s: event handler %q is not allowed", ErrInvalidSVG, name, attr.Key)
		}
		if _, ok := urlAttrs[key]; ok && isScriptURL(attr.Val) {
			return fmt.Errorf("%w: %s: script url in %q is not allowed", ErrInvalidSVG, name, attr.Key)
		}
	}
	return nil
}

// isScriptURL reports whether value holds a javascript: or vbscript: URL.
// Browsers drop ASCII whitespace and control characters inside a URL scheme,
// so they are removed before matching. values is a ';' separated list and is
// matched anywhere.
func isScriptURL(value string) bool {
	compact := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, value)
	compact = strings.ToLower(compact)
	return strings.Contains(compact, "javascript:") || strings.Contains(compact, "vbscript:")
}

func rootAttrs(raw []html.Attribute) []Attr {
	attrs := make([]Attr, 0, len(raw))
	for _, attr := range raw {
		key := attr.Key
		if attr.Namespace != "" {
			key = attr.Namespace + ":" + key
		}
		if key == "xmlns" || key == "class" {
			continue
		}
		if fixed, ok := svgAttrCase[key]; ok {
			key = fixed
		}
		attrs = append(attrs, Attr{Key: key, Value: attr.Val})
	}
	return attrs
}
