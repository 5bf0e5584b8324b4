package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api/request"
)

func ValidateCreateContribution(req request.CreateContributionRequest) error {
	errors := make(map[string]string)

	if req.PortfolioID == "" {
		errors["portfolioId"] = "portfolioId is required"
	} else if err := ValidateUUID(req.PortfolioID); err != nil {
		errors["portfolioId"] = "portfolioId must be a valid UUID"
	}

	if msg := amountError(req.Amount); msg != "" {
		errors["amount"] = msg
	}

	for i, a := range req.Assets {
		if strings.TrimSpace(a.Symbol) == "" {
			errors[fmt.Sprintf("assets[%d].symbol", i)] = "symbol is required"
		}
		if a.Amount < 0 || !finite(a.Amount) {
			errors[fmt.Sprintf("assets[%d].amount", i)] = "amount cannot be negative"
		}
	}

	return result(errors)
}

func ValidateUpdateContribution(req request.UpdateContributionRequest) error {
	errors := make(map[string]string)

	if req.Amount == nil {
		errors["amount"] = "amount is required"
	} else if msg := amountError(*req.Amount); msg != "" {
		errors["amount"] = msg
	}

	return result(errors)
}

func ValidateDistribute(req request.DistributeRequest) error {
	errors := make(map[string]string)

	if req.TotalAmount <= 0 || !finite(req.TotalAmount) {
		errors["totalAmount"] = "totalAmount must be greater than 0"
	}

	return result(errors)
}

func ValidateCommitDistribution(req request.CommitDistributionRequest) error {
	errors := make(map[string]string)

	if len(req.Distributions) == 0 {
		errors["distributions"] = "at least one distribution is required"
	}

	seen := make(map[string]bool)
	for i, d := range req.Distributions {
		if err := ValidateUUID(d.PortfolioID); err != nil {
			errors[fmt.Sprintf("distributions[%d].portfolioId", i)] = "portfolioId must be a valid UUID"
		} else if seen[d.PortfolioID] {
			errors[fmt.Sprintf("distributions[%d].portfolioId", i)] = "portfolio appears more than once"
		}
		seen[d.PortfolioID] = true

		// A zero share is skipped on commit; anything else must be a storable amount.
		if d.Amount < 0 || !finite(d.Amount) {
			errors[fmt.Sprintf("distributions[%d].amount", i)] = "amount cannot be negative"
		} else if d.Amount > 0 {
			if msg := amountError(d.Amount); msg != "" {
				errors[fmt.Sprintf("distributions[%d].amount", i)] = msg
			}
		}
	}

	return result(errors)
}
