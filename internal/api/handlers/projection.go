package handlers

import (
	"net/http"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Planner-Backend/internal/api/response"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/service"
	"github.com/ndewijer/Investment-Planner-Backend/internal/validation"
)

// SimulateResponse is a single what-if projection.
type SimulateResponse struct {
	InitialAmount       float64                 `json:"initialAmount"`
	MonthlyContribution float64                 `json:"monthlyContribution"`
	Years               int                     `json:"years"`
	AnnualReturn        float64                 `json:"annualReturn"`
	Points              []model.ProjectionPoint `json:"points"`
}

// Simulate runs a projection for arbitrary inputs without touching storage.
//
// Endpoint: POST /api/projection/simulate
// Request Body: SimulateRequest
// Response: 200 OK with SimulateResponse
// Error: 400 Bad Request if validation fails or request body is invalid
func Simulate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SimulateRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSimulate(req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, SimulateResponse{
		InitialAmount:       req.InitialAmount,
		MonthlyContribution: req.MonthlyContribution,
		Years:               req.Years,
		AnnualReturn:        *req.AnnualReturn,
		Points:              service.Simulate(req.InitialAmount, req.MonthlyContribution, req.Years, *req.AnnualReturn),
	})
}

// ScenariosList returns the fixed return scenarios portfolios are projected under.
//
// Endpoint: GET /api/projection/scenarios
// Response: 200 OK with array of Scenario
func ScenariosList(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, service.Scenarios)
}
