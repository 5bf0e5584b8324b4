package model

import "time"

// Asset is one holding of a portfolio. Weight is the fractional share of the
// portfolio in [0,1]; Amount is the optional dollar figure the weight was
// derived from (or derived into) through the allocation anchor.
type Asset struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Type          string  `json:"type,omitempty"`
	Weight        float64 `json:"weight"`
	DividendYield float64 `json:"dividendYield"` // Annual fractional yield (0.053 = 5.3%)
	Amount        float64 `json:"amount"`
}

// Portfolio represents a broker account the user contributes to every month.
// TotalInvested caches the sum of the portfolio's contributions; it is always
// recomputed from the contributions, never incremented.
type Portfolio struct {
	ID                  string    `json:"id"`
	Broker              string    `json:"broker"`
	Name                string    `json:"name"`
	Assets              []Asset   `json:"assets"`
	MonthlyContribution float64   `json:"monthlyContribution"`
	TotalInvested       float64   `json:"totalInvested"`
	CreatedDate         time.Time `json:"createdDate"`
}

// TotalWeight returns the sum of all asset weights.
func (p Portfolio) TotalWeight() float64 {
	var total float64
	for _, a := range p.Assets {
		total += a.Weight
	}
	return total
}
