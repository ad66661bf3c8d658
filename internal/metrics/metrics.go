// Package metrics содержит счётчики Prometheus для сверки платежей.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/wahs-congress/internal/services/reconcile"
)

// Reconciliation считает исходы сверки по стадии и метке.
type Reconciliation struct {
	outcomes *prometheus.CounterVec
}

// NewReconciliation регистрирует счётчик wahs_reconciliation_outcomes_total в reg.
func NewReconciliation(reg prometheus.Registerer) *Reconciliation {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wahs_reconciliation_outcomes_total",
		Help: "PayPal IPN reconciliation outcomes by terminal stage and reason.",
	}, []string{"stage", "label"})
	reg.MustRegister(outcomes)
	return &Reconciliation{outcomes: outcomes}
}

// Observe увеличивает счётчик для исхода o.
// Статусы платежей PayPal сводятся к одной метке, чтобы не раздувать кардинальность.
func (r *Reconciliation) Observe(o reconcile.Outcome) {
	label := o.Label()
	if o.Stage == reconcile.StageSkipped && label != reconcile.ReasonDuplicateTxn && label != reconcile.ReasonNoMatch {
		label = "payment_status"
	}
	r.outcomes.WithLabelValues(string(o.Stage), label).Inc()
}
