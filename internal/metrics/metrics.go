package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)
	BillMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bill_mutations_total", Help: "Bill writes by operation"},
		[]string{"op"},
	)
	OverdueSwept = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bills_overdue_swept_total", Help: "Bills moved to overdue by the status sweep"},
	)
)

// MustRegister adds every collector to reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(RequestsTotal, ReqDuration, InFlight, BillMutations, OverdueSwept)
}

// Middleware records request counts and latency by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		InFlight.Inc()
		defer InFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		ReqDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
