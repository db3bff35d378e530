package handlers

import (
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

// TraceContext reads the W3C traceparent and tracestate headers into the
// request context so that failures logged further down carry the caller's
// trace id.
func TraceContext(next http.Handler) http.Handler {
	propagator := propagation.TraceContext{}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
