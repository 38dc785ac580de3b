package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/pkg/ctxutil"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{name: "reuses incoming header", incoming: "upload-batch-17"},
		{name: "generates uuid when absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inCtx string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inCtx = ctxutil.RequestIDFromCtx(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			RequestID()(handler).ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if header == "" || header != inCtx {
				t.Fatalf("header %q and context %q must match and be non-empty", header, inCtx)
			}
			if tt.incoming != "" && header != tt.incoming {
				t.Errorf("expected %q, got %q", tt.incoming, header)
			}
			if tt.incoming == "" {
				if _, err := uuid.Parse(header); err != nil {
					t.Errorf("expected valid UUID, got %q: %v", header, err)
				}
			}
		})
	}
}
