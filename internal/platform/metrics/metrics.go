package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the patientor service.
type Metrics struct {
	RecordsCreated     *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	PatientAccess      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.NewRegistry() in tests to keep registrations isolated.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patientor_records_created_total",
			Help: "Total number of patients and entries stored",
		}, []string{"resource"}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patientor_validation_failures_total",
			Help: "Total number of rejected payloads by field and error kind",
		}, []string{"resource", "field", "kind"}),
		PatientAccess: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patientor_patient_access_total",
			Help: "Requests that touched patient records by action and status",
		}, []string{"action", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patientor_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// IncrementRecordsCreated counts a stored record. Safe on a nil receiver.
func (m *Metrics) IncrementRecordsCreated(resource string) {
	if m == nil {
		return
	}
	m.RecordsCreated.WithLabelValues(resource).Inc()
}

// IncrementValidationFailures counts a rejected payload. Safe on a nil receiver.
func (m *Metrics) IncrementValidationFailures(resource, field, kind string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(resource, field, kind).Inc()
}

// IncrementPatientAccess counts a patient record access. Safe on a nil receiver.
func (m *Metrics) IncrementPatientAccess(action string, status int) {
	if m == nil {
		return
	}
	m.PatientAccess.WithLabelValues(action, strconv.Itoa(status)).Inc()
}

// Middleware observes request latency labelled by the matched route, so
// path parameters do not explode label cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
