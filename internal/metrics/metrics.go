package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registration, domain approval and login gating.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registrations    *prometheus.CounterVec
	Approvals        *prometheus.CounterVec
	CascadeVerified  *prometheus.CounterVec
	LoginRejections  *prometheus.CounterVec
	ApprovalDuration prometheus.Histogram
	RequestDuration  *prometheus.HistogramVec
}

// New registers all collectors with reg. Pass prometheus.DefaultRegisterer in
// production and prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillproof_registrations_total",
			Help: "Registrations by role and verification outcome",
		}, []string{"role", "outcome"}),
		Approvals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillproof_domain_approvals_total",
			Help: "Pending domain requests approved, by organization kind",
		}, []string{"kind"}),
		CascadeVerified: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillproof_cascade_verified_users_total",
			Help: "Users verified by approval cascades, by organization kind",
		}, []string{"kind"}),
		LoginRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillproof_login_rejections_total",
			Help: "Logins refused by the verification gate, by reason",
		}, []string{"reason"}),
		ApprovalDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillproof_domain_approval_duration_seconds",
			Help:    "Duration of the domain approval transaction",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skillproof_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// IncRegistration records a completed registration. outcome is "verified" or "pending".
func (m *Metrics) IncRegistration(role, outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(role, outcome).Inc()
}

// ObserveApproval records one approval and the size of its cascade.
func (m *Metrics) ObserveApproval(kind string, cascaded int, start time.Time) {
	if m == nil {
		return
	}
	m.Approvals.WithLabelValues(kind).Inc()
	m.CascadeVerified.WithLabelValues(kind).Add(float64(cascaded))
	m.ApprovalDuration.Observe(time.Since(start).Seconds())
}

// IncLoginRejection records a login refused for reason.
func (m *Metrics) IncLoginRejection(reason string) {
	if m == nil {
		return
	}
	m.LoginRejections.WithLabelValues(reason).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}
