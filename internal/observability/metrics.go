package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "media_favorites"

var (
	httpRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of API requests by route pattern.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)

	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "postgres",
			Name:      "pool_connections",
			Help:      "Connections held by the pgx pool, by state.",
		},
		[]string{"state"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot_cache",
			Name:      "lookups_total",
			Help:      "Favorites snapshot lookups by result (hit, miss).",
		},
		[]string{"result"},
	)

	favoriteOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_operations_total",
			Help:      "Favorites list operations by kind, operation and outcome.",
		},
		[]string{"kind", "op", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestLatency, dbPoolConns, cacheLookups, favoriteOperations)
}

// Middleware observes request latency labelled with the matched route pattern,
// so /api/favorites/movies/{id} stays one series regardless of the id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		httpRequestLatency.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// StartDBStatsCollector samples pool statistics every interval until ctx is done.
func StartDBStatsCollector(ctx context.Context, pool *pgxpool.Pool) {
	const interval = 5 * time.Second

	sample := func() {
		s := pool.Stat()
		dbPoolConns.WithLabelValues("total").Set(float64(s.TotalConns()))
		dbPoolConns.WithLabelValues("idle").Set(float64(s.IdleConns()))
		dbPoolConns.WithLabelValues("acquired").Set(float64(s.AcquiredConns()))
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for sample(); ; sample() {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
