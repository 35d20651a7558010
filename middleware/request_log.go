package middleware

import (
	"net/http"
	"time"

	"nfl-playoff-pickem/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request with status and latency
func RequestLogger(next http.Handler) http.Handler {
	logger := logging.WithPrefix("HTTP")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		switch {
		case rec.status >= 500:
			logger.Errorw("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", elapsed)
		case rec.status >= 400:
			logger.Warnw("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", elapsed)
		default:
			logger.Debugf("%s %s %d %s", r.Method, r.URL.Path, rec.status, elapsed)
		}
	})
}
