package middleware_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weatherbestie/weatherbestie/internal/api/middleware"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/weather", http.NoBody)
	rec := httptest.NewRecorder()

	middleware.SecurityHeaders(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "no HSTS over plain HTTP")
}

func TestSecurityHeaders_HSTSOverHTTPS(t *testing.T) {
	forwarded := httptest.NewRequest(http.MethodGet, "/api/weather", http.NoBody)
	forwarded.Header.Set("X-Forwarded-Proto", "https")

	direct := httptest.NewRequest(http.MethodGet, "/api/weather", http.NoBody)
	direct.TLS = &tls.ConnectionState{}

	for _, req := range []*http.Request{forwarded, direct} {
		rec := httptest.NewRecorder()
		middleware.SecurityHeaders(okHandler).ServeHTTP(rec, req)
		assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
	}
}

func TestRequireTLS_Disabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/weather", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "http")
	rec := httptest.NewRecorder()

	middleware.RequireTLS(false)(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTLS_Enabled_RejectsHTTP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/weather", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "http")
	rec := httptest.NewRecorder()

	middleware.RequireTLS(true)(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"This endpoint requires HTTPS"}`, rec.Body.String())
}

func TestRequireTLS_Enabled_AllowsHTTPS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/weather", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()

	middleware.RequireTLS(true)(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTLS_Enabled_NoHeaderAllowed(t *testing.T) {
	// Direct connections carry no forwarding header.
	rec := httptest.NewRecorder()

	middleware.RequireTLS(true)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/weather", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContentTypeJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	middleware.ContentTypeJSON(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	middleware.ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}
