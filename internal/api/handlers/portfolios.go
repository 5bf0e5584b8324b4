package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Planner-Backend/internal/api/response"
	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/service"
	"github.com/ndewijer/Investment-Planner-Backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests, including the
// per-portfolio projection, dividend and contribution views.
type PortfolioHandler struct {
	portfolioService    *service.PortfolioService
	contributionService *service.ContributionService
	projectionService   *service.ProjectionService
	dividendService     *service.DividendService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(
	portfolioService *service.PortfolioService,
	contributionService *service.ContributionService,
	projectionService *service.ProjectionService,
	dividendService *service.DividendService,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService:    portfolioService,
		contributionService: contributionService,
		projectionService:   projectionService,
		dividendService:     dividendService,
	}
}

// ReconcileResponse reports the outcome of a reconcile.
type ReconcileResponse struct {
	Portfolio model.Portfolio `json:"portfolio"`
	Changed   bool            `json:"changed"`
}

// Portfolios returns every portfolio, oldest first.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with array of Portfolio
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.GetAllPortfolios(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolios)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolios)
}

// GetPortfolio returns a single portfolio with its ordered assets.
//
// Endpoint: GET /api/portfolio/{uuid}
// Response: 200 OK with Portfolio
// Error: 400 Bad Request if portfolio ID is invalid (validated by middleware)
// Error: 404 Not Found if portfolio not found
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// DeletePortfolio removes a portfolio without contributions.
//
// Endpoint: DELETE /api/portfolio/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if portfolio not found
// Error: 409 Conflict if contributions still reference the portfolio
// Error: 500 Internal Server Error if deletion fails
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.DeletePortfolio(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToDeletePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// UpdateAssets replaces the ordered asset list of a portfolio.
//
// Endpoint: PUT /api/portfolio/{uuid}/assets
// Request Body: UpdateAssetsRequest
// Response: 200 OK with Portfolio
// Error: 400 Bad Request if the body is invalid or the weights do not add up to 100%
// Error: 404 Not Found if portfolio not found
// Error: 500 Internal Server Error if the update fails
func (h *PortfolioHandler) UpdateAssets(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateAssetsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateAssets(req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	assets := make([]model.Asset, len(req.Assets))
	for i, a := range req.Assets {
		assets[i] = model.Asset{
			Symbol:        a.Symbol,
			Name:          a.Name,
			Type:          a.Type,
			Weight:        a.Weight,
			DividendYield: a.DividendYield,
			Amount:        a.Amount,
		}
	}

	portfolio, err := h.portfolioService.UpdateAssets(r.Context(), chi.URLParam(r, "uuid"), assets)
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToUpdatePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// UpdateMonthlyContribution changes the recurring monthly deposit.
//
// Endpoint: PUT /api/portfolio/{uuid}/monthly-contribution
// Request Body: UpdateMonthlyContributionRequest
// Response: 200 OK with Portfolio
// Error: 400 Bad Request if the amount is missing or negative
// Error: 404 Not Found if portfolio not found
// Error: 500 Internal Server Error if the update fails
func (h *PortfolioHandler) UpdateMonthlyContribution(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateMonthlyContributionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateMonthlyContribution(req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	portfolio, err := h.portfolioService.UpdateMonthlyContribution(r.Context(), chi.URLParam(r, "uuid"), *req.MonthlyContribution)
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToUpdatePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// Reconcile recomputes the total invested of a portfolio from its contributions.
//
// Endpoint: POST /api/portfolio/{uuid}/reconcile
// Response: 200 OK with ReconcileResponse
// Error: 404 Not Found if portfolio not found
// Error: 500 Internal Server Error if the reconcile fails
func (h *PortfolioHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	portfolio, changed, err := h.portfolioService.ReconcilePortfolio(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToUpdatePortfolio)
		return
	}

	response.RespondJSON(w, http.StatusOK, ReconcileResponse{Portfolio: portfolio, Changed: changed})
}

// Projection simulates the portfolio under every return scenario.
// The optional years query parameter defaults to 10 and is capped at 50.
//
// Endpoint: GET /api/portfolio/{uuid}/projection?years=N
// Response: 200 OK with PortfolioProjection
// Error: 400 Bad Request if years is not an integer or above the maximum
// Error: 404 Not Found if portfolio not found
// Error: 500 Internal Server Error if the projection fails
func (h *PortfolioHandler) Projection(w http.ResponseWriter, r *http.Request) {
	years, _, err := parseIntQuery(r, "years")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", map[string]string{"years": err.Error()})
		return
	}

	projection, err := h.projectionService.ProjectPortfolio(r.Context(), chi.URLParam(r, "uuid"), years)
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToGetProjection)
		return
	}

	response.RespondJSON(w, http.StatusOK, projection)
}

// Dividends estimates the dividend income of a portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/dividends
// Response: 200 OK with PortfolioDividends
// Error: 404 Not Found if portfolio not found
// Error: 500 Internal Server Error if the estimate fails
func (h *PortfolioHandler) Dividends(w http.ResponseWriter, r *http.Request) {
	dividends, err := h.dividendService.PortfolioDividends(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToGetDividends)
		return
	}

	response.RespondJSON(w, http.StatusOK, dividends)
}

// Contributions lists the contributions of one portfolio, newest first.
//
// Endpoint: GET /api/portfolio/{uuid}/contribution
// Response: 200 OK with array of Contribution
// Error: 404 Not Found if portfolio not found
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Contributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := h.contributionService.ListContributions(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveContributions)
		return
	}

	response.RespondJSON(w, http.StatusOK, contributions)
}
