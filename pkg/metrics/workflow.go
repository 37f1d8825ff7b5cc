package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics counts shift workflow outcomes.
// A nil *WorkflowMetrics is valid and records nothing.
type WorkflowMetrics struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	copied      prometheus.Counter
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shift_transitions_total",
		Help: "Committed shift workflow actions.",
	}, []string{"action"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shift_workflow_failures_total",
		Help: "Rejected or failed shift workflow actions by error code.",
	}, []string{"action", "code"})
	copied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shift_week_copies_shifts_total",
		Help: "Shifts created by weekly copy.",
	})
	reg.MustRegister(transitions, failures, copied)
	return &WorkflowMetrics{
		transitions: transitions,
		failures:    failures,
		copied:      copied,
	}
}

// IncTransition records a committed action
func (m *WorkflowMetrics) IncTransition(action string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncFailure records a rejected action with its error code
func (m *WorkflowMetrics) IncFailure(action, code string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(action), normalizeLabel(code)).Inc()
}

// AddCopied records shifts created by a weekly copy
func (m *WorkflowMetrics) AddCopied(n int) {
	if m == nil || m.copied == nil {
		return
	}
	m.copied.Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
