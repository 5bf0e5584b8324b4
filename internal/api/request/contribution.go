package request

import "github.com/ndewijer/Investment-Planner-Backend/internal/model"

// ContributionAssetRequest is one row of an explicit contribution breakdown.
type ContributionAssetRequest struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Weight float64 `json:"weight,omitempty"`
}

// CreateContributionRequest records a deposit against one portfolio.
// When Assets is empty the deposit is split by the portfolio's current weights.
type CreateContributionRequest struct {
	PortfolioID string                     `json:"portfolioId"`
	Amount      float64                    `json:"amount"`
	Assets      []ContributionAssetRequest `json:"assets,omitempty"`
}

// UpdateContributionRequest changes the amount of a contribution. Required.
type UpdateContributionRequest struct {
	Amount *float64 `json:"amount"`
}

// DistributeRequest previews how a combined deposit splits over the brokers.
type DistributeRequest struct {
	TotalAmount float64 `json:"totalAmount"`
}

// CommitDistributionRequest records previewed distributions as contributions.
type CommitDistributionRequest struct {
	Distributions []model.Distribution `json:"distributions"`
}
