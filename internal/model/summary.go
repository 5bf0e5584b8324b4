package model

// Summary aggregates every portfolio. Money values are rounded to two decimals.
type Summary struct {
	TotalInvested     float64 `json:"totalInvested"`
	PortfolioCount    int     `json:"portfolioCount"`
	MonthlyDividends  float64 `json:"monthlyDividends"`
	AnnualDividends   float64 `json:"annualDividends"`
	ContributionCount int     `json:"contributionCount"`
}

// AlertType identifies what triggered an alert.
type AlertType string

const (
	AlertMilestone AlertType = "milestone"
	AlertDividends AlertType = "dividends"
)

// Alert is a derived notification. Alerts are not stored; they are evaluated
// again on every request.
type Alert struct {
	Type    AlertType `json:"type"`
	Level   string    `json:"level"` // success, info
	Message string    `json:"message"`
	Value   float64   `json:"value"`
}
