package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/trainhist/pkg/logger"
	"github.com/okian/trainhist/pkg/metrics"
)

// MetricsMiddleware records request count, latency and error class for one
// endpoint label. Failed requests are also logged at debug level when log
// is non-nil.
func MetricsMiddleware(next http.HandlerFunc, endpoint string, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		code := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, float64(elapsed.Milliseconds()))

		if rec.status < http.StatusBadRequest {
			return
		}
		class := getErrorType(rec.status)
		metrics.RecordErrorByEndpoint(endpoint, r.Method, class)
		if log == nil {
			return
		}
		log.Debug(r.Context(), "request failed",
			logger.String("endpoint", endpoint),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rec.status),
			logger.String("class", class),
			logger.Duration("elapsed", elapsed),
		)
	}
}

// getErrorType buckets a failing status code for the error-rate metric.
func getErrorType(status int) string {
	switch {
	case status == http.StatusBadGateway:
		return "upstream_error"
	case status == http.StatusServiceUnavailable:
		return "unavailable"
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}
