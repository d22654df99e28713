package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSlowRequest is the latency above which a request is logged at WARN.
const DefaultSlowRequest = 200 * time.Millisecond

// RouteUnmatched labels requests no route claimed.
const RouteUnmatched = "unmatched"

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

var slowRequest = sync.OnceValue(func() time.Duration {
	if v := os.Getenv("HACKATHON_SLOW_REQUEST_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return DefaultSlowRequest
})

// RequestObserver records request latencies, keyed by route pattern.
type RequestObserver interface {
	ObserveRequest(route string, status int, d time.Duration)
}

// routeSlot is filled in by the handler that matched, so the label is the
// registered pattern and never the raw path.
type routeSlot struct{ route string }

const routeContextKey contextKey = "route"

// SetRoute records the matched route pattern for Timing.
func SetRoute(ctx context.Context, route string) {
	if slot, ok := ctx.Value(routeContextKey).(*routeSlot); ok {
		slot.route = route
	}
}

// recorder captures the status and body size a handler produced.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *recorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *recorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *recorder) code() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

// Timing tags each request with an ID, logs its latency and feeds observer.
// Requests under /static/ pass straight through.
func Timing(observer RequestObserver) func(http.Handler) http.Handler {
	threshold := slowRequest()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			slot := &routeSlot{route: RouteUnmatched}
			r = r.WithContext(context.WithValue(r.Context(), routeContextKey, slot))
			rw := &recorder{ResponseWriter: w}
			start := time.Now()
			defer func() {
				elapsed := time.Since(start)
				level := slog.LevelDebug
				msg := "request"
				if elapsed >= threshold {
					level, msg = slog.LevelWarn, "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", id,
					"method", r.Method,
					"path", r.URL.Path,
					"route", slot.route,
					"status", rw.code(),
					"bytes", rw.bytes,
					"duration_ms", float64(elapsed.Microseconds())/1000.0,
				)
				if observer != nil {
					observer.ObserveRequest(slot.route, rw.code(), elapsed)
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
