package request

// AssetRequest is one asset of an asset list update.
type AssetRequest struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Type          string  `json:"type,omitempty"`
	Weight        float64 `json:"weight"`
	DividendYield float64 `json:"dividendYield,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
}

// UpdateAssetsRequest replaces the ordered asset list of a portfolio.
// The weights must add up to 100% (±1%).
type UpdateAssetsRequest struct {
	Assets []AssetRequest `json:"assets"`
}

// UpdateMonthlyContributionRequest changes the recurring monthly deposit.
// MonthlyContribution is required and may be zero.
type UpdateMonthlyContributionRequest struct {
	MonthlyContribution *float64 `json:"monthlyContribution"`
}
