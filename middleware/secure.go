package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureHeaders wraps next with the standard set of security response headers.
// In development mode unrolled/secure skips the host and SSL checks.
func SecureHeaders(next http.Handler, isDevelopment bool) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         isDevelopment,
	})
	return secureMiddleware.Handler(next)
}
