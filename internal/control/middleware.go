package control

import (
	"net"
	"net/http"
)

// loopbackOnly rejects any request whose remote address isn't 127.0.0.1
// or ::1, regardless of what interface the listener is bound to.
func (s *Server) loopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			writeError(w, http.StatusForbidden, "control API is loopback-only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware requires the X-Auth-Token header to match authToken
// when one has been configured. An empty token disables auth entirely,
// which is only safe because loopbackOnly has already run.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("X-Auth-Token") != s.authToken {
			writeError(w, http.StatusUnauthorized, "invalid or missing auth token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// httpconcurrencyLimit bounds the number of requests in flight at once,
// rejecting with 503 once the limit is reached rather than queueing
// indefinitely.
func httpconcurrencyLimit(n int) func(http.Handler) http.Handler {
	sem := make(chan struct{}, n)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
				next.ServeHTTP(w, r)
			default:
				writeError(w, http.StatusServiceUnavailable, "too many concurrent control requests")
			}
		})
	}
}
