package middleware

import (
	"net/http"

	"github.com/loujainjnad/taskboard-api/internal/api/shared"
)

// TraceID attaches a random trace ID to every request's context and echoes
// it in the X-Trace-ID response header so clients can quote it in reports.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		w.Header().Set("X-Trace-ID", shared.GetTraceID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
