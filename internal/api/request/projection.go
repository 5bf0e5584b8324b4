package request

// SimulateRequest runs a single projection without a stored portfolio.
type SimulateRequest struct {
	InitialAmount       float64  `json:"initialAmount"`
	MonthlyContribution float64  `json:"monthlyContribution"`
	Years               int      `json:"years"`
	AnnualReturn        *float64 `json:"annualReturn"` // Fraction, 0.07 = 7%. Required.
}
