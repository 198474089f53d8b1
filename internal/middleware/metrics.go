package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/booking-orchestrator/internal/obs"
)

type statusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func MetricsMiddleware(m *obs.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, Status: 200}

			next.ServeHTTP(rec, r)

			status := strconv.Itoa(rec.Status)
			method := r.Method
			// the route pattern keeps bookingID and friends out of the label set
			path := chi.RouteContext(r.Context()).RoutePattern()
			if path == "" {
				path = r.URL.Path
			}

			m.IncHTTPRequestsTotal(method, path, status)
			m.ObserveHTTPRequestDuration(method, path, status, time.Since(start).Seconds())
		}

		return http.HandlerFunc(fn)
	}
}
