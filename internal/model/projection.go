package model

// ProjectionPoint is the simulated state of a portfolio at the end of a year.
// All values are rounded to two decimal places.
type ProjectionPoint struct {
	Year           int     `json:"year"`
	TotalInvested  float64 `json:"totalInvested"`
	ProjectedValue float64 `json:"projectedValue"`
	Gains          float64 `json:"gains"`
}

// Scenario names a fixed annual return used for projections.
type Scenario struct {
	Name         string  `json:"name"`
	AnnualReturn float64 `json:"annualReturn"`
}

// PortfolioProjection holds the yearly projection of one portfolio under
// every scenario, keyed by scenario name.
type PortfolioProjection struct {
	PortfolioID         string                       `json:"portfolioId"`
	Years               int                          `json:"years"`
	InitialAmount       float64                      `json:"initialAmount"`
	MonthlyContribution float64                      `json:"monthlyContribution"`
	Scenarios           map[string][]ProjectionPoint `json:"scenarios"`
}
