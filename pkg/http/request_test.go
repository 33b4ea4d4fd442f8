package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractClientIP_RemoteAddrFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:44321"

	ip := ExtractClientIP(r, nil)
	assert.Equal(t, "203.0.113.9", ip)
}

func TestExtractClientIP_IgnoresForwardedFromUntrustedSource(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:44321"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")

	ip := ExtractClientIP(r, &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}})
	assert.Equal(t, "203.0.113.9", ip)
}

func TestExtractClientIP_HonorsForwardedFromTrustedProxy(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:80"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.1.2.3")

	ip := ExtractClientIP(r, &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}})
	assert.Equal(t, "198.51.100.1", ip)
}

func TestExtractClientIP_XRealIPFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:80"
	r.Header.Set("X-Forwarded-For", "not-an-ip")
	r.Header.Set("X-Real-IP", "198.51.100.7")

	ip := ExtractClientIP(r, &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}})
	assert.Equal(t, "198.51.100.7", ip)
}
