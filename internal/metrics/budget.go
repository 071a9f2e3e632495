package metrics

import "github.com/prometheus/client_golang/prometheus"

// BudgetTokensRemaining tracks the shared token budget. Embedding and
// completion draw from the same pool.
var BudgetTokensRemaining = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "wayfarer",
		Name:      "budget_tokens_remaining",
		Help:      "Remaining token budget",
	},
	[]string{"provider", "period"},
)

var budgetMetricsRegistered bool

// RegisterBudgetMetrics registers Prometheus budget metrics. Must be called once from main.
func RegisterBudgetMetrics() {
	if budgetMetricsRegistered {
		return
	}
	prometheus.MustRegister(BudgetTokensRemaining)
	budgetMetricsRegistered = true
}
