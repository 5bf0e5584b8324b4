package model

// PortfolioDividends is the estimated dividend income of a portfolio based on
// the dividend yield of its assets and the amount invested.
type PortfolioDividends struct {
	PortfolioID     string  `json:"portfolioId"`
	Monthly         float64 `json:"monthly"`
	Annual          float64 `json:"annual"`
	YieldPercentage float64 `json:"yieldPercentage"`
}
