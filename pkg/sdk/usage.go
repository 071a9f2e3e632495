package wayfarer

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants. An empty period lets the server pick its
// default (month).
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
	PeriodTotal UsagePeriod = "total"
)

// UsageReport contains token usage statistics for a time period.
type UsageReport struct {
	Period        UsagePeriod  `json:"period"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
}

// UsageMetrics tracks upstream token consumption.
type UsageMetrics struct {
	Tokens           int  `json:"tokens"`
	CostMillidollars *int `json:"cost_millidollars,omitempty"`
}

// BudgetStatus tracks token quota state. Limits read zero when the
// server runs without a budget.
type BudgetStatus struct {
	TokensLimit     int        `json:"tokens_limit"`
	TokensRemaining int        `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

// Usage returns the server's token usage report for the given period.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	path := "/usage"
	if period != "" {
		path += "?period=" + url.QueryEscape(string(period))
	}

	var report UsageReport
	if _, err = c.doJSON(ctx, http.MethodGet, path, nil, &report); err != nil {
		return UsageReport{}, err
	}
	return report, nil
}
