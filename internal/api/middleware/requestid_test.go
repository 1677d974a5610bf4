package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newRequestIDRouter(seen *string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		*seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	r := newRequestIDRouter(&seen)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	got := w.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected generated UUID, got %q", got)
	}
	if seen != got {
		t.Fatalf("context id %q does not match header %q", seen, got)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	var seen string
	r := newRequestIDRouter(&seen)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "upstream-1234")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "upstream-1234" {
		t.Fatalf("expected upstream id, got %q", got)
	}
	if seen != "upstream-1234" {
		t.Fatalf("expected context id upstream-1234, got %q", seen)
	}
}

func TestRequestID_RejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"too long":   strings.Repeat("a", maxRequestIDLength+1),
		"whitespace": "has space",
		"control":    "bad\x01id",
	}

	for name, id := range tests {
		t.Run(name, func(t *testing.T) {
			var seen string
			r := newRequestIDRouter(&seen)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test", nil)
			req.Header.Set(RequestIDHeader, id)
			r.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if got == id {
				t.Fatalf("malformed id %q was propagated", id)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("expected replacement UUID, got %q", got)
			}
		})
	}
}
