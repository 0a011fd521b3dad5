package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification delivery outcomes.
const (
	NotificationOK      = "ok"
	NotificationFailed  = "failed"
	NotificationDropped = "dropped"
)

// Task operations.
const (
	TaskCreated    = "created"
	TaskUpdated    = "updated"
	TaskReassigned = "reassigned"
	TaskDeleted    = "deleted"
)

// Metrics holds the service counters and histograms.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Tasks             *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
	DashboardDuration prometheus.Histogram
	HTTPRequests      *prometheus.CounterVec
}

// New registers all taskdesk metrics with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Tasks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskdesk_tasks_total",
			Help: "Total number of task mutations by operation",
		}, []string{"operation"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskdesk_notifications_total",
			Help: "Total number of notification writes by result",
		}, []string{"result"}),
		DashboardDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskdesk_dashboard_duration_seconds",
			Help:    "Duration of dashboard assembly",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskdesk_http_requests_total",
			Help: "Total number of HTTP requests by method, route pattern and status",
		}, []string{"method", "route", "status"}),
	}
}

// IncTask records a task mutation.
func (m *Metrics) IncTask(operation string) {
	if m == nil {
		return
	}
	m.Tasks.WithLabelValues(operation).Inc()
}

// IncNotification records the outcome of one notification write.
func (m *Metrics) IncNotification(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}

// ObserveDashboard records the duration of a dashboard call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveDashboard(start time.Time) {
	if m == nil {
		return
	}
	m.DashboardDuration.Observe(time.Since(start).Seconds())
}

// IncHTTPRequest records a served request.
func (m *Metrics) IncHTTPRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
