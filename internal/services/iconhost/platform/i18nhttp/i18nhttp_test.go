package i18nhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	platformi18n "github.com/louisbranch/iconhost/internal/platform/i18n"
)

func TestResolveTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		target      string
		cookie      string
		accept      string
		want        string
		wantPersist bool
	}{
		{name: "default", target: "/", want: "en-US"},
		{name: "query", target: "/?lang=pt-BR", want: "pt-BR", wantPersist: true},
		{name: "unsupported query falls through", target: "/?lang=xx", accept: "es-AR,es;q=0.9", want: "es"},
		{name: "cookie", target: "/", cookie: "es", accept: "pt-BR", want: "es"},
		{name: "accept language", target: "/", accept: "pt-BR,pt;q=0.8", want: "pt-BR"},
		{name: "unsupported accept", target: "/", accept: "ja", want: "en-US"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tc.cookie})
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			got, persist := ResolveTag(req)
			if got.String() != tc.want || persist != tc.wantPersist {
				t.Fatalf("ResolveTag() = %s, %v; want %s, %v", got, persist, tc.want, tc.wantPersist)
			}
		})
	}
}

func TestMiddlewareInstallsPrinter(t *testing.T) {
	t.Parallel()

	var label string
	h := Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		label = platformi18n.PrinterFromContext(r.Context()).Sprintf("icons.loading", "home")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/icons/?lang=es", nil))
	if label != "Cargando icono home" {
		t.Fatalf("label = %q", label)
	}
	if rr.Header().Get("Content-Language") != "es" || Lang(rr) != "es" {
		t.Fatalf("Content-Language = %q", rr.Header().Get("Content-Language"))
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != LangCookieName || cookies[0].Value != "es" {
		t.Fatalf("cookies = %+v", cookies)
	}
}
