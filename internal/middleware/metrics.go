package middleware

import (
	"github.com/gorilla/mux"
	"gophergrub/internal/metrics"
	"net/http"
	"time"
)

// Metrics records every request under its route template, so /menu?date=...
// and /menu share one series. mux only runs Use middleware on matched routes,
// so it must also wrap the router's NotFound and MethodNotAllowed handlers;
// those requests are recorded as "unmatched".
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.RecordRequest(route, r.Method, rec.status, time.Since(start))
		})
	}
}
