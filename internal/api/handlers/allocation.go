package handlers

import (
	"net/http"

	"github.com/ndewijer/Investment-Planner-Backend/internal/allocation"
	"github.com/ndewijer/Investment-Planner-Backend/internal/api/request"
	"github.com/ndewijer/Investment-Planner-Backend/internal/api/response"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/validation"
)

// The allocation endpoints are stateless: the client sends the asset list it
// is editing, one step is applied, and the resulting list comes back. Nothing
// is stored until the list is saved through PUT /api/portfolio/{uuid}/assets.

// AllocationResponse is the asset list after a step.
type AllocationResponse struct {
	Assets      []model.Asset       `json:"assets"`
	TotalAmount float64             `json:"totalAmount"`
	TotalWeight float64             `json:"totalWeight"`
	Warning     *allocation.Warning `json:"warning,omitempty"`
}

// allocationStep applies one operation to the draft.
type allocationStep func(req request.AllocationRequest, a *allocation.Allocation) (*allocation.Warning, error)

// serveAllocation parses and validates the draft, applies step and writes the result.
func serveAllocation(w http.ResponseWriter, r *http.Request, validate func(request.AllocationRequest) error, step allocationStep) {
	req, err := parseJSON[request.AllocationRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validate(req); err != nil {
		response.RespondValidationError(w, err)
		return
	}

	draft := allocation.New(req.Assets, allocation.NewAnchor(req.TotalAmount))
	warning, err := step(req, draft)
	if err != nil {
		response.RespondValidationError(w, err)
		return
	}

	total, _ := draft.Anchor.Total()
	response.RespondJSON(w, http.StatusOK, AllocationResponse{
		Assets:      draft.Assets,
		TotalAmount: total,
		TotalWeight: draft.TotalWeight(),
		Warning:     warning,
	})
}

// SetAllocationTotal anchors the draft at totalAmount, deriving amounts from
// weights and weights from amounts. A zero total removes the anchor.
//
// Endpoint: POST /api/allocation/total
// Request Body: AllocationRequest (assets, totalAmount)
// Response: 200 OK with AllocationResponse
// Error: 400 Bad Request if the draft is invalid
func SetAllocationTotal(w http.ResponseWriter, r *http.Request) {
	serveAllocation(w, r, validation.ValidateAllocation, func(req request.AllocationRequest, a *allocation.Allocation) (*allocation.Warning, error) {
		a.SetTotalAmount(req.TotalAmount)
		return nil, nil
	})
}

// UpsertAllocationAsset adds the asset, or replaces the one at index when given.
// A warning is returned when an amount was given without a total to derive
// the weight from.
//
// Endpoint: POST /api/allocation/asset
// Request Body: AllocationRequest (assets, totalAmount, asset, optional index)
// Response: 200 OK with AllocationResponse
// Error: 400 Bad Request if the asset is invalid or its symbol already exists
func UpsertAllocationAsset(w http.ResponseWriter, r *http.Request) {
	serveAllocation(w, r, validation.ValidateAllocationAsset, func(req request.AllocationRequest, a *allocation.Allocation) (*allocation.Warning, error) {
		if req.Index != nil {
			return a.EditAsset(*req.Index, *req.Asset)
		}
		return a.AddAsset(*req.Asset)
	})
}

// RemoveAllocationAsset drops the asset at index.
//
// Endpoint: POST /api/allocation/remove
// Request Body: AllocationRequest (assets, totalAmount, index)
// Response: 200 OK with AllocationResponse
// Error: 400 Bad Request if index is missing or out of range
func RemoveAllocationAsset(w http.ResponseWriter, r *http.Request) {
	serveAllocation(w, r, validation.ValidateAllocationRemove, func(req request.AllocationRequest, a *allocation.Allocation) (*allocation.Warning, error) {
		return nil, a.RemoveAsset(*req.Index)
	})
}

// NormalizeAllocation rescales the weights to add up to exactly 100%.
//
// Endpoint: POST /api/allocation/normalize
// Request Body: AllocationRequest (assets, totalAmount)
// Response: 200 OK with AllocationResponse
// Error: 400 Bad Request if no asset has a weight
func NormalizeAllocation(w http.ResponseWriter, r *http.Request) {
	serveAllocation(w, r, validation.ValidateAllocation, func(_ request.AllocationRequest, a *allocation.Allocation) (*allocation.Warning, error) {
		return nil, a.NormalizeWeights()
	})
}

// RecalculateAllocation derives weights from amounts against the total.
//
// Endpoint: POST /api/allocation/recalculate
// Request Body: AllocationRequest (assets, totalAmount)
// Response: 200 OK with AllocationResponse
// Error: 400 Bad Request if no total is set or no asset has an amount
func RecalculateAllocation(w http.ResponseWriter, r *http.Request) {
	serveAllocation(w, r, validation.ValidateAllocation, func(_ request.AllocationRequest, a *allocation.Allocation) (*allocation.Warning, error) {
		return nil, a.RecalculateWeightsFromAmounts()
	})
}

// ReorderAllocation moves the asset at from to position to.
//
// Endpoint: POST /api/allocation/reorder
// Request Body: AllocationRequest (assets, totalAmount, from, to)
// Response: 200 OK with AllocationResponse
// Error: 400 Bad Request if a position is missing or out of range
func ReorderAllocation(w http.ResponseWriter, r *http.Request) {
	serveAllocation(w, r, validation.ValidateAllocationReorder, func(req request.AllocationRequest, a *allocation.Allocation) (*allocation.Warning, error) {
		return nil, a.Reorder(*req.From, *req.To)
	})
}

// ValidateAllocation checks the save precondition: weights add up to 100% (±1%).
//
// Endpoint: POST /api/allocation/validate
// Request Body: AllocationRequest (assets)
// Response: 200 OK with AllocationResponse when the draft can be saved
// Error: 400 Bad Request with the actual percentage when it cannot
func ValidateAllocation(w http.ResponseWriter, r *http.Request) {
	serveAllocation(w, r, validation.ValidateAllocation, func(_ request.AllocationRequest, a *allocation.Allocation) (*allocation.Warning, error) {
		return nil, a.Validate()
	})
}
