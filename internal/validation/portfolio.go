package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api/request"
)

// MaxAssets bounds the asset list of a single portfolio.
const MaxAssets = 100

func ValidateUpdateAssets(req request.UpdateAssetsRequest) error {
	errors := make(map[string]string)

	if len(req.Assets) == 0 {
		errors["assets"] = "at least one asset is required"
	} else if len(req.Assets) > MaxAssets {
		errors["assets"] = fmt.Sprintf("at most %d assets are allowed", MaxAssets)
	}

	for i, a := range req.Assets {
		if len(strings.TrimSpace(a.Symbol)) > 20 {
			errors[fmt.Sprintf("assets[%d].symbol", i)] = "symbol must be 20 characters or less"
		}
		if len(a.Name) > 255 {
			errors[fmt.Sprintf("assets[%d].name", i)] = "name must be 255 characters or less"
		}
		if !finite(a.Weight) || !finite(a.Amount) || !finite(a.DividendYield) {
			errors[fmt.Sprintf("assets[%d]", i)] = "numbers must be finite"
		}
	}

	return result(errors)
}

func ValidateUpdateMonthlyContribution(req request.UpdateMonthlyContributionRequest) error {
	errors := make(map[string]string)

	if req.MonthlyContribution == nil {
		errors["monthlyContribution"] = "monthlyContribution is required"
	} else if *req.MonthlyContribution < 0 || !finite(*req.MonthlyContribution) {
		errors["monthlyContribution"] = "monthlyContribution cannot be negative"
	}

	return result(errors)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
