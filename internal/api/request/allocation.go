package request

import (
	"github.com/ndewijer/Investment-Planner-Backend/internal/allocation"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
)

// AllocationRequest carries an asset list being edited client-side together
// with its anchor total (0 = no total set) and the parameters of the step
// to apply. Only the fields of the called endpoint are read.
type AllocationRequest struct {
	Assets      []model.Asset          `json:"assets"`
	TotalAmount float64                `json:"totalAmount"`
	Asset       *allocation.AssetInput `json:"asset,omitempty"` // asset: the asset to add or edit
	Index       *int                   `json:"index,omitempty"` // asset: edit instead of add; remove: position
	From        *int                   `json:"from,omitempty"`  // reorder
	To          *int                   `json:"to,omitempty"`    // reorder
}
