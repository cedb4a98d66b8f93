package fetcher

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"net/http"
)

// viewport is a desktop screen size reported by the browser fetchers.
type viewport struct {
	Width  int
	Height int
}

var commonViewports = []viewport{
	{1920, 1080}, {1366, 768}, {1536, 864},
	{1440, 900}, {1280, 720},
}

// randomViewport picks a common desktop viewport for a browser session.
func randomViewport() viewport {
	return commonViewports[rand.Intn(len(commonViewports))]
}

// WindowSize formats v as a Chromium --window-size value.
func (v viewport) WindowSize() string {
	return fmt.Sprintf("%d,%d", v.Width, v.Height)
}

// applyBrowserHeaders fills in the navigation headers a desktop browser sends,
// leaving any header that is already set untouched.
func applyBrowserHeaders(h http.Header) {
	defaults := [][2]string{
		{"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"},
		{"Accept-Language", "en-US,en;q=0.9"},
		{"Upgrade-Insecure-Requests", "1"},
		{"Sec-Fetch-Dest", "document"},
		{"Sec-Fetch-Mode", "navigate"},
		{"Sec-Fetch-Site", "none"},
		{"Sec-Fetch-User", "?1"},
	}
	for _, kv := range defaults {
		if h.Get(kv[0]) == "" {
			h.Set(kv[0], kv[1])
		}
	}
}

// browserTLSConfig returns a TLS config whose cipher order resembles Chrome's.
func browserTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS13,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
			tls.CurveP384,
		},
	}
}
