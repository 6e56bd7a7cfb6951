package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type CacheMetrics struct {
	Lookups *prometheus.CounterVec
}

type BusinessMetrics struct {
	CustomersCreatedTotal prometheus.Counter
	CustomersStored       prometheus.Gauge
	PagesServedTotal      *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_service_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Cache = CacheMetrics{
		Lookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_service_cache_lookups_total",
				Help: "Customer cache lookups by result.",
			},
			[]string{"result"},
		),
	}

	Business = BusinessMetrics{
		CustomersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_service_customers_created_total",
				Help: "Total number of customers successfully created.",
			},
		),
		CustomersStored: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_service_customers_stored",
				Help: "Number of customer records in the store at the last stats run.",
			},
		),
		PagesServedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_service_pages_served_total",
				Help: "Customer list pages served by navigation direction.",
			},
			[]string{"direction"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordCacheLookup(result string) {
	Cache.Lookups.WithLabelValues(result).Inc()
}

func RecordCustomerCreated() {
	Business.CustomersCreatedTotal.Inc()
}

func SetCustomersStored(count int64) {
	Business.CustomersStored.Set(float64(count))
}

func RecordPageServed(direction string) {
	Business.PagesServedTotal.WithLabelValues(direction).Inc()
}
