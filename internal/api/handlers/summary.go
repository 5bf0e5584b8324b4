package handlers

import (
	"net/http"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api/response"
	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/service"
)

// SummaryHandler serves the cross-portfolio views: the overall summary,
// its alerts and the full data export.
type SummaryHandler struct {
	summaryService   *service.SummaryService
	portfolioService *service.PortfolioService
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(summaryService *service.SummaryService, portfolioService *service.PortfolioService) *SummaryHandler {
	return &SummaryHandler{
		summaryService:   summaryService,
		portfolioService: portfolioService,
	}
}

// Summary aggregates the invested totals and dividend estimates of every portfolio.
//
// Endpoint: GET /api/summary
// Response: 200 OK with Summary
// Error: 500 Internal Server Error if the data cannot be loaded
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaryService.OverallSummary(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToGetSummary)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Alerts evaluates milestone and dividend alerts for the current summary.
//
// Endpoint: GET /api/summary/alerts
// Response: 200 OK with array of Alert
// Error: 500 Internal Server Error if the data cannot be loaded
func (h *SummaryHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.summaryService.CheckAlerts(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToGetAlerts)
		return
	}

	response.RespondJSON(w, http.StatusOK, alerts)
}

// Export returns every portfolio and contribution as one snapshot.
//
// Endpoint: GET /api/export
// Response: 200 OK with Snapshot
// Error: 500 Internal Server Error if the data cannot be loaded
func (h *SummaryHandler) Export(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.portfolioService.Export(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToExport)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="investment-planner-export.json"`)
	response.RespondJSON(w, http.StatusOK, snapshot)
}
