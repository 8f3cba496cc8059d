package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/louisbranch/iconhost/internal/platform/icons"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestHTTPStatusMapsKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{err: nil, want: http.StatusOK},
		{err: E(KindInvalidInput, "bad"), want: http.StatusBadRequest},
		{err: E(KindNotFound, "missing"), want: http.StatusNotFound},
		{err: E(KindInvalidAsset, "broken"), want: http.StatusUnprocessableEntity},
		{err: E(KindTimeout, "slow"), want: http.StatusGatewayTimeout},
		{err: E(KindUnavailable, "down"), want: http.StatusServiceUnavailable},
		{err: E(KindUnknown, "?"), want: http.StatusInternalServerError},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
		{err: status.Error(codes.NotFound, "missing"), want: http.StatusNotFound},
		{err: status.Error(codes.Unavailable, "down"), want: http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestFromLookupClassifiesIconErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "not found", err: fmt.Errorf("%w: %q", icons.ErrNotFound, "ghost"), want: KindNotFound},
		{name: "invalid", err: fmt.Errorf("load icon %q: %w", "bad", icons.ErrInvalidSVG), want: KindInvalidAsset},
		{name: "timeout", err: context.DeadlineExceeded, want: KindTimeout},
		{name: "other", err: errors.New("disk on fire"), want: KindUnknown},
		{name: "already typed", err: E(KindUnavailable, "down"), want: KindUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := FromLookup(tc.err)
			if KindOf(got) != tc.want {
				t.Fatalf("KindOf(FromLookup()) = %s, want %s", KindOf(got), tc.want)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("FromLookup() should keep the cause, got %v", got)
			}
		})
	}
	if FromLookup(nil) != nil {
		t.Fatal("FromLookup(nil) should be nil")
	}
}

func TestErrorStringFallbacks(t *testing.T) {
	t.Parallel()

	if got := (Error{Kind: KindTimeout}).Error(); got != string(KindTimeout) {
		t.Fatalf("Error() = %q, want kind", got)
	}
	if got := (Error{Kind: KindTimeout, Err: errors.New("cause")}).Error(); got != "cause" {
		t.Fatalf("Error() = %q, want cause", got)
	}
}
