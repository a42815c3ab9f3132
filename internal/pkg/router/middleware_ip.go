package router

import (
	"net"
	"net/http"
	"strings"

	"github.com/shandysiswandi/otpbite/internal/pkg/config"
)

// middlewareIP rewrites RemoteAddr to the bare client IP. Forwarding headers
// are only honoured when app.trust_proxy_headers is set, otherwise any client
// could pick its own rate-limit bucket.
func middlewareIP(cfg config.Config) Middleware {
	trustProxy := cfg != nil && cfg.GetBool("app.trust_proxy_headers")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := clientIP(r, trustProxy); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, candidate := range []string{
			r.Header.Get("True-Client-IP"),
			r.Header.Get("X-Real-IP"),
			firstForwarded(r.Header.Get("X-Forwarded-For")),
		} {
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return ""
}

func firstForwarded(xff string) string {
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}
