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

// ContributionHandler handles HTTP requests for contribution endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the contributionService.
type ContributionHandler struct {
	contributionService *service.ContributionService
}

// NewContributionHandler creates a new ContributionHandler with the provided service dependency.
func NewContributionHandler(contributionService *service.ContributionService) *ContributionHandler {
	return &ContributionHandler{
		contributionService: contributionService,
	}
}

// AllContributions returns every contribution across all portfolios, newest first.
//
// Endpoint: GET /api/contribution
// Response: 200 OK with array of Contribution
// Error: 500 Internal Server Error if retrieval fails
func (h *ContributionHandler) AllContributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := h.contributionService.ListContributions(r.Context(), "")
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveContributions)
		return
	}

	response.RespondJSON(w, http.StatusOK, contributions)
}

// GetContribution returns a single contribution with its asset breakdown.
//
// Endpoint: GET /api/contribution/{uuid}
// Response: 200 OK with Contribution
// Error: 400 Bad Request if contribution ID is invalid (validated by middleware)
// Error: 404 Not Found if contribution not found
// Error: 500 Internal Server Error if retrieval fails
func (h *ContributionHandler) GetContribution(w http.ResponseWriter, r *http.Request) {
	contribution, err := h.contributionService.GetContribution(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveContribution)
		return
	}

	response.RespondJSON(w, http.StatusOK, contribution)
}

// CreateContribution records a deposit against one portfolio. Without an
// explicit asset breakdown the amount is split by the portfolio's weights.
//
// Endpoint: POST /api/contribution
// Request Body: CreateContributionRequest (portfolioId, amount, optional assets)
// Response: 201 Created with Contribution
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if portfolio not found
// Error: 500 Internal Server Error if creation fails
func (h *ContributionHandler) CreateContribution(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateContributionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateContribution(req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	var breakdown []model.ContributionAsset
	for _, a := range req.Assets {
		breakdown = append(breakdown, model.ContributionAsset{
			Symbol: a.Symbol,
			Name:   a.Name,
			Amount: a.Amount,
			Weight: a.Weight,
		})
	}

	contribution, err := h.contributionService.AddContribution(r.Context(), req.PortfolioID, req.Amount, breakdown)
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToSaveContribution)
		return
	}

	response.RespondJSON(w, http.StatusCreated, contribution)
}

// UpdateContribution changes the amount of a contribution. The asset
// breakdown is rescaled so every asset keeps its share.
//
// Endpoint: PUT /api/contribution/{uuid}
// Request Body: UpdateContributionRequest (amount)
// Response: 200 OK with Contribution
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if contribution not found
// Error: 500 Internal Server Error if the update fails
func (h *ContributionHandler) UpdateContribution(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateContributionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateContribution(req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	contribution, err := h.contributionService.EditContribution(r.Context(), chi.URLParam(r, "uuid"), *req.Amount)
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToSaveContribution)
		return
	}

	response.RespondJSON(w, http.StatusOK, contribution)
}

// DeleteContribution removes a contribution and recomputes the portfolio total.
//
// Endpoint: DELETE /api/contribution/{uuid}
// Response: 204 No Content
// Error: 400 Bad Request if contribution ID is invalid (validated by middleware)
// Error: 404 Not Found if contribution not found
// Error: 500 Internal Server Error if deletion fails
func (h *ContributionHandler) DeleteContribution(w http.ResponseWriter, r *http.Request) {
	if err := h.contributionService.DeleteContribution(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToDeleteContribution)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Distribute previews how a combined deposit splits over the portfolios by
// broker percentage. Nothing is stored.
//
// Endpoint: POST /api/contribution/distribute
// Request Body: DistributeRequest (totalAmount)
// Response: 200 OK with array of Distribution
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if the portfolios cannot be loaded
func (h *ContributionHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.DistributeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateDistribute(req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	distributions, err := h.contributionService.DistributeAcrossPortfolios(r.Context(), req.TotalAmount)
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToDistribute)
		return
	}

	response.RespondJSON(w, http.StatusOK, distributions)
}

// CommitDistribution records previewed distributions as contributions.
// Commits stop at the first failure; earlier ones stay recorded.
//
// Endpoint: POST /api/contribution/distribute/commit
// Request Body: CommitDistributionRequest (distributions)
// Response: 201 Created with array of Contribution
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if a portfolio does not exist
// Error: 500 Internal Server Error if a commit fails
func (h *ContributionHandler) CommitDistribution(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CommitDistributionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCommitDistribution(req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	committed, err := h.contributionService.CommitDistribution(r.Context(), req.Distributions)
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToDistribute)
		return
	}

	response.RespondJSON(w, http.StatusCreated, committed)
}
