package model

import "time"

// ContributionType tells how a contribution was created.
type ContributionType string

const (
	// ContributionManual is a deposit recorded directly against one portfolio.
	ContributionManual ContributionType = "manual"
	// ContributionDistributed is a deposit committed from a distribution plan.
	ContributionDistributed ContributionType = "distributed"
)

// ContributionAsset is the per-asset share of a contribution at the time it was recorded.
type ContributionAsset struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Weight float64 `json:"weight"`
}

// Contribution is a deposit event against a single portfolio. Its asset
// breakdown is a snapshot: later weight edits on the portfolio never change it.
// An empty Assets slice means no per-asset breakdown was recorded.
type Contribution struct {
	ID          string              `json:"id"`
	PortfolioID string              `json:"portfolioId"`
	Amount      float64             `json:"amount"`
	Assets      []ContributionAsset `json:"assets"`
	Date        time.Time           `json:"date"`
	Type        ContributionType    `json:"type"`
}

// Distribution is a planned split of a combined deposit for one portfolio.
// It is not persisted until committed as a contribution.
type Distribution struct {
	PortfolioID string              `json:"portfolioId"`
	Broker      string              `json:"broker"`
	Amount      float64             `json:"amount"`
	Assets      []ContributionAsset `json:"assets"`
}

// Snapshot is a whole-entity copy of the stored data for export collaborators.
type Snapshot struct {
	Portfolios    []Portfolio    `json:"portfolios"`
	Contributions []Contribution `json:"contributions"`
	ExportedAt    time.Time      `json:"exportedAt"`
}
