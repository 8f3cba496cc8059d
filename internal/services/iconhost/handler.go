package iconhost

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/louisbranch/iconhost/internal/platform/i18n"
	"github.com/louisbranch/iconhost/internal/platform/icons"
	"github.com/louisbranch/iconhost/internal/platform/icons/iconview"
	"github.com/louisbranch/iconhost/internal/platform/icons/resolver"
	"github.com/louisbranch/iconhost/internal/platform/timeouts"
	apperrors "github.com/louisbranch/iconhost/internal/services/iconhost/platform/errors"
	"github.com/louisbranch/iconhost/internal/services/iconhost/platform/httpx"
	"github.com/louisbranch/iconhost/internal/services/iconhost/platform/i18nhttp"
	"github.com/louisbranch/iconhost/internal/services/iconhost/platform/observability"
	"github.com/louisbranch/iconhost/internal/services/iconhost/routepath"
	"github.com/louisbranch/iconhost/internal/services/iconhost/templates"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.opentelemetry.io/otel/trace"
)

// DefaultGalleryStyle is the style used by the gallery when none is asked for.
const DefaultGalleryStyle = "large"

const svgCacheControl = "public, max-age=3600"

type handlers struct {
	library        icons.Library
	logger         *log.Logger
	tracer         trace.Tracer
	resolveTimeout time.Duration
	inlineWait     time.Duration
	htmxScriptURL  string
	markdown       goldmark.Markdown
}

// NewHandler builds the iconhost root handler.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Library == nil {
		return nil, errors.New("icon library is required")
	}
	h := &handlers{
		library:        cfg.Library,
		logger:         cfg.logger(),
		tracer:         cfg.Tracer,
		resolveTimeout: cfg.ResolveTimeout,
		inlineWait:     cfg.InlineWait,
		htmxScriptURL:  strings.TrimSpace(cfg.HTMXScriptURL),
		markdown:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	if h.resolveTimeout <= 0 {
		h.resolveTimeout = timeouts.ResolveFragment
	}
	if h.inlineWait < 0 {
		h.inlineWait = 0
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.Handle(routepath.Health, httpx.RequireMethod(http.MethodGet)(http.HandlerFunc(h.handleHealth)))
	mux.HandleFunc("GET "+routepath.IconsPrefix+"{$}", h.handleGallery)
	mux.HandleFunc("GET "+routepath.Catalog, h.handleCatalog)
	mux.HandleFunc("GET "+routepath.CatalogMarkdown, h.handleCatalogMarkdown)
	mux.HandleFunc("GET "+routepath.IconsPrefix+"{name}", h.handleIcon)
	mux.HandleFunc("GET "+routepath.IconsPrefix+"{name}/svg", h.handleIconSVG)

	return httpx.Chain(mux,
		httpx.RecoverPanic(h.logger),
		httpx.RequestID(),
		i18nhttp.Middleware(),
		observability.RequestLogger(h.logger),
	), nil
}

func (h *handlers) newResolver() *resolver.Resolver {
	opts := []resolver.Option{resolver.WithLogger(h.logger)}
	if h.tracer != nil {
		opts = append(opts, resolver.WithTracer(h.tracer))
	}
	return resolver.New(h.library, opts...)
}

func (h *handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.IconsPrefix, http.StatusFound)
}

func (h *handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGallery renders every catalog icon. Each slot gets its own resolver;
// slots that settle within the inline wait render their asset, the rest
// render a lazy placeholder that fetches the settled fragment.
func (h *handlers) handleGallery(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	defs, err := h.library.List(ctx)
	if err != nil {
		h.logger.Printf("list icons failed request_id=%s error=%v", httpx.RequestIDFrom(r), err)
		httpx.WriteError(w, apperrors.Wrap(apperrors.KindUnavailable, "icon catalog unavailable", err))
		return
	}
	style := strings.TrimSpace(r.URL.Query().Get("style"))
	if style == "" {
		style = DefaultGalleryStyle
	}

	resolvers := make([]*resolver.Resolver, len(defs))
	for idx, def := range defs {
		resolvers[idx] = h.newResolver()
		resolvers[idx].Request(ctx, def.Name)
	}
	defer func() {
		for _, res := range resolvers {
			res.Close()
		}
	}()

	if h.inlineWait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, h.inlineWait)
		for _, res := range resolvers {
			if _, err := res.Wait(waitCtx); err != nil {
				break
			}
		}
		cancel()
	}

	printer := i18n.PrinterFromContext(ctx)
	items := make([]templates.GalleryItem, len(defs))
	for idx, def := range defs {
		items[idx] = templates.GalleryItem{
			Name:        def.Name,
			Label:       def.Label,
			Description: def.Description,
			SVGURL:      routepath.IconSVG(def.Name),
			Icon: iconview.Icon(resolvers[idx], iconview.Props{
				Name:    def.Name,
				Style:   style,
				LazyURL: routepath.IconWithStyle(def.Name, style),
			}),
		}
	}
	body := templates.Gallery(items, templates.GalleryLinks{
		Catalog:         routepath.Catalog,
		CatalogMarkdown: routepath.CatalogMarkdown,
	}, printer)
	h.writePage(w, r, printer.Sprintf("icons.gallery.title"), body)
}

// handleIcon renders the settled icon view for one name. A lookup that
// outlasts the resolve timeout renders a placeholder that polls again.
func (h *handlers) handleIcon(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	name := r.PathValue("name")
	style := strings.TrimSpace(r.URL.Query().Get("style"))

	res := h.newResolver()
	defer res.Close()
	res.Request(ctx, name)

	waitCtx, cancel := context.WithTimeout(ctx, h.resolveTimeout)
	snap, err := res.Wait(waitCtx)
	cancel()

	props := iconview.Props{Name: name, Style: style}
	if err != nil {
		props.LazyURL = routepath.IconWithStyle(name, style)
		props.LazyDelay = h.resolveTimeout
		h.logger.Printf("icon fragment not settled name=%q request_id=%s error=%v", name, httpx.RequestIDFrom(r), err)
	}
	fragment := iconview.Settled(snap, props)
	if httpx.IsHTMXRequest(r) {
		h.writeFragment(w, r, fragment)
		return
	}
	h.writePage(w, r, name, fragment)
}

func (h *handlers) handleIconSVG(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	ctx, cancel := context.WithTimeout(httpx.RequestContext(r), h.resolveTimeout)
	defer cancel()

	asset, err := h.library.Load(ctx, name)
	if err != nil {
		err = apperrors.FromLookup(err)
		h.logger.Printf("icon svg failed name=%q request_id=%s kind=%s error=%v", name, httpx.RequestIDFrom(r), apperrors.KindOf(err), err)
		httpx.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", svgCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Document())
}

func (h *handlers) handleCatalogMarkdown(w http.ResponseWriter, r *http.Request) {
	defs, err := h.library.List(httpx.RequestContext(r))
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.KindUnavailable, "icon catalog unavailable", err))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(icons.CatalogMarkdown(defs)))
}

func (h *handlers) handleCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	defs, err := h.library.List(ctx)
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.KindUnavailable, "icon catalog unavailable", err))
		return
	}
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(icons.CatalogMarkdown(defs)), &buf); err != nil {
		h.logger.Printf("render catalog failed request_id=%s error=%v", httpx.RequestIDFrom(r), err)
		httpx.WriteError(w, err)
		return
	}
	title := i18n.PrinterFromContext(ctx).Sprintf("icons.catalog.title")
	h.writePage(w, r, title, templates.CatalogDocument(buf.String()))
}

// writePage renders body inside the full layout.
func (h *handlers) writePage(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	ctx := httpx.RequestContext(r)
	page := templates.Page(templates.PageOptions{
		Title:         title,
		Lang:          i18nhttp.Lang(w),
		HTMXScriptURL: h.htmxScriptURL,
		Breadcrumbs:   templates.BuildBreadcrumbs(r.URL.Path, i18n.PrinterFromContext(ctx)),
	})
	h.writeFragment(w, r, templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		return page.Render(templ.WithChildren(ctx, body), out)
	}))
}

// writeFragment buffers c so a render error can still produce a 500.
func (h *handlers) writeFragment(w http.ResponseWriter, r *http.Request, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(httpx.RequestContext(r), &buf); err != nil {
		h.logger.Printf("render failed path=%s request_id=%s error=%v", r.URL.Path, httpx.RequestIDFrom(r), err)
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteHTML(w, http.StatusOK, buf.String())
}
