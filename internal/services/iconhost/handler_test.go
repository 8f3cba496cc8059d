package iconhost

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/iconhost/internal/platform/icons"
)

const dotSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 4 4" fill="none"><circle cx="2" cy="2" r="1"/></svg>`

func testLibrary(t *testing.T) *icons.Catalog {
	t.Helper()

	catalog := icons.NewCatalog()
	register := func(def icons.Definition, loader icons.Loader) {
		if err := catalog.Register(def, loader); err != nil {
			t.Fatalf("register %s: %v", def.Name, err)
		}
	}
	register(icons.Definition{Name: "dot", Label: "Dot", Description: "A dot", Source: "test"}, func(context.Context) (icons.Asset, error) {
		return icons.ParseSVG("dot", []byte(dotSVG))
	})
	register(icons.Definition{Name: "slow", Label: "Slow", Source: "test"}, func(ctx context.Context) (icons.Asset, error) {
		<-ctx.Done()
		return icons.Asset{}, ctx.Err()
	})
	register(icons.Definition{Name: "broken", Label: "Broken", Source: "test"}, func(context.Context) (icons.Asset, error) {
		return icons.ParseSVG("broken", []byte(`<svg><script>alert(1)</script></svg>`))
	})
	return catalog
}

func newTestHandler(t *testing.T, lib icons.Library, mutate func(*Config)) http.Handler {
	t.Helper()

	cfg := Config{
		Library:        lib,
		ResolveTimeout: 2 * time.Second,
		InlineWait:     2 * time.Second,
		HTMXScriptURL:  "/static/htmx.min.js",
		Logger:         log.New(io.Discard, "", 0),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h, err := NewHandler(cfg)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewHandlerRequiresLibrary(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Config{}); err == nil {
		t.Fatal("expected missing library error")
	}
}

func TestRootRedirectsToGallery(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if got := rec.Header().Get("Location"); got != "/icons/" {
		t.Fatalf("location = %q, want /icons/", got)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
	rec = serve(h, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestIconFragmentRendersResolvedAsset(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), nil)
	req := httptest.NewRequest(http.MethodGet, "/icons/dot?style=small", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := `<div role="dotIcon"><svg xmlns="http://www.w3.org/2000/svg" class="h-4 w-4 icon shrink-0" viewBox="0 0 4 4" fill="none"><circle cx="2" cy="2" r="1"/></svg></div>`
	if got := rec.Body.String(); got != want {
		t.Fatalf("body =\n%s\nwant\n%s", got, want)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}

func TestIconFragmentUnknownNameRendersEmptyContainer(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), nil)
	req := httptest.NewRequest(http.MethodGet, "/icons/doesnotexist", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != `<div role="doesnotexistIcon"></div>` {
		t.Fatalf("body = %q", got)
	}
}

func TestIconFragmentTimeoutRendersRetryingPlaceholder(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), func(cfg *Config) {
		cfg.ResolveTimeout = 20 * time.Millisecond
	})
	req := httptest.NewRequest(http.MethodGet, "/icons/slow?style=nav", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(h, req)

	body := rec.Body.String()
	if !strings.Contains(body, `hx-get="/icons/slow?style=nav"`) {
		t.Fatalf("expected retry url, got %q", body)
	}
	if !strings.Contains(body, `hx-trigger="load delay:20ms"`) {
		t.Fatalf("expected delayed trigger, got %q", body)
	}
	if !strings.Contains(body, "animate-pulse") {
		t.Fatalf("expected placeholder, got %q", body)
	}
}

func TestIconFragmentWithoutHTMXRendersFullPage(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/icons/dot", nil))
	body := rec.Body.String()
	if !strings.HasPrefix(body, "<!doctype html>") {
		t.Fatalf("expected full page, got %q", body)
	}
	if !strings.Contains(body, `<title>dot | iconhost</title>`) {
		t.Fatalf("missing title in %q", body)
	}
	if !strings.Contains(body, `<script src="/static/htmx.min.js" defer></script>`) {
		t.Fatalf("missing htmx script in %q", body)
	}
	if !strings.Contains(body, `role="dotIcon"`) {
		t.Fatalf("missing icon in %q", body)
	}
}

func TestIconSVG(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), nil)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "found", path: "/icons/dot/svg", wantStatus: http.StatusOK},
		{name: "missing", path: "/icons/doesnotexist/svg", wantStatus: http.StatusNotFound},
		{name: "case sensitive", path: "/icons/Dot/svg", wantStatus: http.StatusNotFound},
		{name: "invalid asset", path: "/icons/broken/svg", wantStatus: http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(h, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%q)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus != http.StatusOK {
				return
			}
			if got := rec.Header().Get("Content-Type"); got != "image/svg+xml" {
				t.Fatalf("content type = %q", got)
			}
			if !strings.HasPrefix(rec.Body.String(), `<svg xmlns="http://www.w3.org/2000/svg"`) {
				t.Fatalf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestGalleryRendersSettledIcons(t *testing.T) {
	t.Parallel()

	catalog, err := icons.NewEmbedded()
	if err != nil {
		t.Fatalf("NewEmbedded() error = %v", err)
	}
	h := newTestHandler(t, catalog, nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/icons/", nil))

	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, name := range catalog.Names() {
		if !strings.Contains(body, `role="`+name+`Icon"`) {
			t.Fatalf("gallery missing %s", name)
		}
	}
	if strings.Contains(body, "animate-pulse") {
		t.Fatalf("gallery should be settled within the inline wait")
	}
	if !strings.Contains(body, `class="h-8 w-8 icon shrink-0"`) {
		t.Fatalf("gallery should default to the large style")
	}
	if !strings.Contains(body, `href="/icons/home/svg"`) {
		t.Fatalf("gallery missing svg link")
	}
}

func TestGalleryPendingIconsLoadLazily(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), func(cfg *Config) {
		cfg.InlineWait = 10 * time.Millisecond
	})
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/icons/?style=small", nil))
	body := rec.Body.String()
	want := `<div role="slowIcon" hx-get="/icons/slow?style=small" hx-trigger="load" hx-swap="outerHTML">`
	if !strings.Contains(body, want) {
		t.Fatalf("gallery missing lazy slot %q in %q", want, body)
	}
}

func TestGalleryLocalizesChrome(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), func(cfg *Config) {
		cfg.InlineWait = 0
	})
	req := httptest.NewRequest(http.MethodGet, "/icons/?lang=pt-BR", nil)
	rec := serve(h, req)

	if got := rec.Header().Get("Content-Language"); got != "pt-BR" {
		t.Fatalf("content language = %q", got)
	}
	if !strings.Contains(rec.Body.String(), `<html lang="pt-BR">`) {
		t.Fatalf("page lang missing in %q", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Carregando ícone slow") {
		t.Fatalf("placeholder label not localized in %q", rec.Body.String())
	}
}

func TestCatalogMarkdown(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/icons/catalog.md", nil))
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/markdown") {
		t.Fatalf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "| `dot` |") {
		t.Fatalf("markdown = %q", rec.Body.String())
	}
}

func TestCatalogHTML(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testLibrary(t), nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/icons/catalog", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "<table>") || !strings.Contains(body, "<code>dot</code>") {
		t.Fatalf("catalog html = %q", body)
	}
}

type failingLibrary struct{}

func (failingLibrary) Load(context.Context, string) (icons.Asset, error) {
	return icons.Asset{}, errors.New("disk on fire")
}

func (failingLibrary) List(context.Context) ([]icons.Definition, error) {
	return nil, errors.New("disk on fire")
}

func TestCatalogUnavailable(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, failingLibrary{}, nil)
	for _, path := range []string{"/icons/", "/icons/catalog", "/icons/catalog.md"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s status = %d, want 503", path, rec.Code)
		}
	}
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/icons/dot/svg", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("svg status = %d, want 500", rec.Code)
	}
}
