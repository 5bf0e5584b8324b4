package validation

import (
	"fmt"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Planner-Backend/internal/service"
)

func ValidateSimulate(req request.SimulateRequest) error {
	errors := make(map[string]string)

	if req.InitialAmount < 0 || !finite(req.InitialAmount) {
		errors["initialAmount"] = "initialAmount cannot be negative"
	}
	if req.MonthlyContribution < 0 || !finite(req.MonthlyContribution) {
		errors["monthlyContribution"] = "monthlyContribution cannot be negative"
	}
	if req.Years < 1 || req.Years > service.MaxProjectionYears {
		errors["years"] = fmt.Sprintf("years must be between 1 and %d", service.MaxProjectionYears)
	}
	if req.AnnualReturn == nil {
		errors["annualReturn"] = "annualReturn is required"
	} else if *req.AnnualReturn <= -1 || *req.AnnualReturn > 1 || !finite(*req.AnnualReturn) {
		errors["annualReturn"] = "annualReturn must be a fraction between -1 and 1"
	}

	return result(errors)
}
