package httpx

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/iconhost/internal/services/iconhost/platform/errors"
)

func TestChainAppliesMiddlewareInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("first"), nil, mark("second"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got := strings.Join(order, ","); got != "first,second,handler" {
		t.Fatalf("order = %s", got)
	}
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.HasPrefix(seen, "icon-") {
		t.Fatalf("generated request id = %q", seen)
	}
	if rr.Header().Get("X-Request-ID") != seen {
		t.Fatalf("response id = %q, want %q", rr.Header().Get("X-Request-ID"), seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-7")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if seen != "req-7" || rr.Header().Get("X-Request-ID") != "req-7" {
		t.Fatalf("incoming request id not kept: %q", seen)
	}
}

func TestRecoverPanicWrites500AndLogs(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	h := RecoverPanic(log.New(&logs, "", 0))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/icons/home", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(logs.String(), "panic recovered method=GET path=/icons/home") {
		t.Fatalf("log = %q", logs.String())
	}
}

func TestRequireMethod(t *testing.T) {
	t.Parallel()

	h := RequireMethod(http.MethodGet)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for method, want := range map[string]int{
		http.MethodGet:  http.StatusNoContent,
		http.MethodHead: http.StatusNoContent,
		http.MethodPost: http.StatusMethodNotAllowed,
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/", nil))
		if rr.Code != want {
			t.Fatalf("%s status = %d, want %d", method, rr.Code, want)
		}
	}
}

func TestWriteErrorUsesTypedStatus(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteError(rr, apperrors.E(apperrors.KindNotFound, "icon not found"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "icon not found") {
		t.Fatalf("body = %q", rr.Body.String())
	}
}

func TestWriteJSONAndHTML(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	if err := WriteJSON(rr, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if rr.Header().Get("Content-Type") != "application/json; charset=utf-8" || !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("json response = %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	if err := WriteHTML(rr, http.StatusAccepted, "<p>hi</p>"); err != nil {
		t.Fatalf("WriteHTML() error = %v", err)
	}
	if rr.Code != http.StatusAccepted || rr.Body.String() != "<p>hi</p>" {
		t.Fatalf("html response = %d %q", rr.Code, rr.Body.String())
	}
}

func TestIsHTMXRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if IsHTMXRequest(req) {
		t.Fatal("plain request reported as htmx")
	}
	req.Header.Set("HX-Request", "true")
	if !IsHTMXRequest(req) {
		t.Fatal("htmx request not detected")
	}
	if IsHTMXRequest(nil) {
		t.Fatal("nil request reported as htmx")
	}
}
