package control

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// auditMiddleware records every request that makes it past auth to the
// security audit log. A nil audit logger (e.g. in tests) disables this
// without special-casing call sites.
func (s *Server) auditMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.audit == nil {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		s.audit.Log(host, r.UserAgent(), r.Method+" "+r.URL.Path, ww.Status(), "")
	})
}
