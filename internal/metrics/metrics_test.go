package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestApprovalCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveApproval("university", 3, time.Now())
	m.ObserveApproval("university", 2, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Approvals.WithLabelValues("university")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.CascadeVerified.WithLabelValues("university")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncRegistration("student", "pending")
		m.IncLoginRejection("pending_verification")
		m.ObserveApproval("company", 1, time.Now())
		m.ObserveRequest("GET", "/health", "200", time.Now())
	})
}
