package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/workforce-portal/internal/metrics"
	"github.com/frahmantamala/workforce-portal/pkg/logger"
)

const (
	filtered = "[FILTERED]"
	// maxLoggedBody caps how much of a request or response body is logged.
	maxLoggedBody = 4 << 10
)

// sensitiveFields are matched as substrings of lower-cased header and JSON key names.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"apikey",
	"cookie",
	"session",
	"credential",
}

// LoggingMiddleware logs every request and its response with sensitive values
// masked, and feeds request latency into rec when it is not nil.
func LoggingMiddleware(rec *metrics.Recorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := logger.From(r.Context())

			var reqBody []byte
			if r.Body != nil {
				reqBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(reqBody))
			}

			log.Info("incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", maskHeaders(r.Header),
				"body", maskBody(reqBody),
			)

			rw := &responseWriter{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			status := rw.status()
			duration := time.Since(start)
			rec.ObserveHTTPRequest(r.Method, status, duration)

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			log.Log(r.Context(), level, "response",
				"status_code", status,
				"duration_ms", duration.Milliseconds(),
				"response_size", rw.size,
				"body", maskBody(rw.body.Bytes()),
			)
		})
	}
}

// responseWriter records the status and the first maxLoggedBody bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	if room := maxLoggedBody - rw.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		rw.body.Write(b[:room])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) status() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(name, field) {
			return true
		}
	}
	return false
}

func maskHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			masked[name] = filtered
			continue
		}
		masked[name] = strings.Join(values, ", ")
	}
	return masked
}

// maskBody masks sensitive keys of a JSON body. Bodies that are not JSON are
// dropped when they mention a sensitive field.
func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if isSensitive(string(body)) {
			return "[FILTERED - contains sensitive data]"
		}
		return string(body)
	}

	out, err := json.Marshal(maskJSON(data))
	if err != nil {
		return "[ERROR - failed to marshal masked body]"
	}
	return string(out)
}

func maskJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		masked := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				masked[key] = filtered
				continue
			}
			masked[key] = maskJSON(value)
		}
		return masked
	case []interface{}:
		masked := make([]interface{}, len(v))
		for i, item := range v {
			masked[i] = maskJSON(item)
		}
		return masked
	default:
		return v
	}
}
