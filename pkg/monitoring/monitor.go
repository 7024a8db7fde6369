package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// Domain metrics
	OperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_store_operations_total",
			Help: "Course store operations by operation and outcome",
		},
		[]string{"operation", "result"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "course_store_operation_duration_seconds",
			Help:    "Duration of course store operations including simulated latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogCourses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "course_catalog_size",
			Help: "Number of courses in the catalog",
		},
	)

	SignIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sign_ins_total",
			Help: "Successful sign ins by role",
		},
		[]string{"role"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(OperationCounter)
		prometheus.MustRegister(OperationDuration)
		prometheus.MustRegister(CatalogCourses)
		prometheus.MustRegister(SignIns)
	})
}

// ObserveOperation records one store operation. err == nil counts as success.
func ObserveOperation(operation string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	OperationCounter.WithLabelValues(operation, result).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
