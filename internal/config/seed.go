package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
)

// DefaultSeed returns the broker configuration portfolios are seeded from on
// first start: half of every combined deposit goes to a long-term ETF
// portfolio, half to a dividend and growth portfolio. A fresh value is
// returned on every call.
func DefaultSeed() model.SeedConfig {
	return model.SeedConfig{
		Brokers: []model.BrokerSeed{
			{
				Broker:              "etoro",
				DisplayName:         "eToro",
				PortfolioName:       "eToro - Long-Term Growth",
				Percentage:          0.5,
				MonthlyContribution: 100,
				Assets: []model.Asset{
					{Symbol: "SPY", Name: "SPDR S&P 500 ETF", Type: "ETF", Weight: 0.50},
					{Symbol: "QQQ", Name: "Invesco QQQ Trust", Type: "ETF", Weight: 0.25},
					{Symbol: "VXUS", Name: "Vanguard Total International Stock ETF", Type: "ETF", Weight: 0.15},
					{Symbol: "BND", Name: "Vanguard Total Bond Market ETF", Type: "ETF", Weight: 0.10},
				},
			},
			{
				Broker:              "hapi",
				DisplayName:         "Hapi",
				PortfolioName:       "Hapi - Dividends and Growth",
				Percentage:          0.5,
				MonthlyContribution: 100,
				Assets: []model.Asset{
					{Symbol: "AMZN", Name: "Amazon.com Inc", Type: "Stock", Weight: 0.20},
					{Symbol: "GOOGL", Name: "Alphabet Inc", Type: "Stock", Weight: 0.20},
					{Symbol: "MSFT", Name: "Microsoft Corporation", Type: "Stock", Weight: 0.15, DividendYield: 0.008},
					{Symbol: "AAPL", Name: "Apple Inc", Type: "Stock", Weight: 0.10, DividendYield: 0.005},
					{Symbol: "O", Name: "Realty Income Corporation", Type: "REIT", Weight: 0.10, DividendYield: 0.053},
					{Symbol: "STAG", Name: "STAG Industrial Inc", Type: "REIT", Weight: 0.10, DividendYield: 0.043},
					{Symbol: "VICI", Name: "VICI Properties Inc", Type: "REIT", Weight: 0.10, DividendYield: 0.055},
					{Symbol: "BTCUSD", Name: "Bitcoin", Type: "Crypto", Weight: 0.05},
				},
			},
		},
	}
}

// LoadSeed reads a seed configuration from a JSON file and validates it.
func LoadSeed(path string) (model.SeedConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return model.SeedConfig{}, fmt.Errorf("failed to read seed config: %w", err)
	}

	var seed model.SeedConfig
	if err := json.Unmarshal(data, &seed); err != nil {
		return model.SeedConfig{}, fmt.Errorf("failed to parse seed config: %w", err)
	}

	if err := ValidateSeed(seed); err != nil {
		return model.SeedConfig{}, err
	}
	return seed, nil
}

// ValidateSeed checks that broker keys are unique, percentages are within
// [0,1] and add up to at most 100%, and every asset list sums to 100%.
func ValidateSeed(seed model.SeedConfig) error {
	seen := make(map[string]bool)
	var percentage float64

	for _, b := range seed.Brokers {
		if b.Broker == "" {
			return fmt.Errorf("seed config: broker key is required")
		}
		if seen[b.Broker] {
			return fmt.Errorf("seed config: duplicate broker %q", b.Broker)
		}
		seen[b.Broker] = true

		if b.Percentage < 0 || b.Percentage > 1 {
			return fmt.Errorf("seed config: broker %q percentage must be between 0 and 1", b.Broker)
		}
		percentage += b.Percentage

		var weight float64
		for _, a := range b.Assets {
			weight += a.Weight
		}
		if len(b.Assets) > 0 && math.Abs(weight-1) > 0.01 {
			return fmt.Errorf("seed config: broker %q asset weights add up to %.2f%%", b.Broker, weight*100)
		}
	}

	if percentage > 1.0001 {
		return fmt.Errorf("seed config: broker percentages add up to %.2f%%", percentage*100)
	}
	return nil
}
