package middleware

import (
	"net/http"

	"github.com/frahmantamala/workforce-portal/pkg/logger"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags the request logger with a request id, taken from the
// caller when present, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "request_id", requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
