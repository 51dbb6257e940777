package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Auth event labels.
const (
	EventRegister          = "register"
	EventRegisterDuplicate = "register_duplicate"
	EventLogin             = "login"
	EventLoginUnknown      = "login_unknown"
	EventLoginWrongPass    = "login_wrong_password"
	EventLogout            = "logout"
)

type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthEvents      *prometheus.CounterVec
	Comments        prometheus.Counter
	PostChanges     *prometheus.CounterVec
}

// New creates the blog collectors and registers them with r.
func New(r prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "HTTP requests by method, matched route and status code.",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AuthEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_auth_events_total",
			Help: "Registration, login and logout outcomes.",
		}, []string{"event"}),
		Comments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_comments_created_total",
			Help: "Comments persisted.",
		}),
		PostChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_posts_changed_total",
			Help: "Post create, update and delete operations.",
		}, []string{"op"}),
	}
	r.MustRegister(m.Requests, m.RequestDuration, m.AuthEvents, m.Comments, m.PostChanges)
	return m
}

func (m *Metrics) Auth(event string) {
	m.AuthEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) PostChanged(op string) {
	m.PostChanges.WithLabelValues(op).Inc()
}
