// Package metrics holds the Prometheus collectors of the portal. A nil
// *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for approval_transitions_total.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Result labels for notification_emails_total.
const (
	EmailSent       = "sent"
	EmailFailed     = "failed"
	EmailSuppressed = "suppressed"
)

type Recorder struct {
	registry           *prometheus.Registry
	handler            http.Handler
	transitions        *prometheus.CounterVec
	transitionDuration *prometheus.HistogramVec
	notifications      *prometheus.CounterVec
	emails             *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "approval_transitions_total",
		Help: "Status transitions attempted, by entity, action and outcome",
	}, []string{"entity", "action", "outcome"})

	transitionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "approval_transition_duration_seconds",
		Help:    "Time spent applying a transition including notification dispatch",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "In-app notification records created, by kind",
	}, []string{"kind"})

	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_emails_total",
		Help: "Notification emails by delivery result",
	}, []string{"result"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	registry.MustRegister(
		transitions,
		transitionDuration,
		notifications,
		emails,
		requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Recorder{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		transitions:        transitions,
		transitionDuration: transitionDuration,
		notifications:      notifications,
		emails:             emails,
		requestDuration:    requestDuration,
	}
}

func (m *Recorder) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Recorder) ObserveTransition(entity, action, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entity, action, outcome).Inc()
	m.transitionDuration.WithLabelValues(entity).Observe(duration.Seconds())
}

func (m *Recorder) NotificationCreated(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *Recorder) EmailResult(result string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(result).Inc()
}

func (m *Recorder) ObserveHTTPRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(duration.Seconds())
}
