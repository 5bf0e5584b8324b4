package validation

import (
	"github.com/ndewijer/Investment-Planner-Backend/internal/api/request"
)

// ValidateAllocation checks the draft shared by every allocation step.
// Step-specific rules are enforced by the allocation itself.
func ValidateAllocation(req request.AllocationRequest) error {
	errors := make(map[string]string)

	if len(req.Assets) > MaxAssets {
		errors["assets"] = "too many assets"
	}
	if req.TotalAmount < 0 || !finite(req.TotalAmount) {
		errors["totalAmount"] = "totalAmount cannot be negative"
	}

	return result(errors)
}

// ValidateAllocationAsset additionally requires the asset payload.
func ValidateAllocationAsset(req request.AllocationRequest) error {
	if err := ValidateAllocation(req); err != nil {
		return err
	}
	if req.Asset == nil {
		return &Error{Fields: map[string]string{"asset": "asset is required"}}
	}
	return nil
}

// ValidateAllocationReorder additionally requires both positions.
func ValidateAllocationReorder(req request.AllocationRequest) error {
	errors := make(map[string]string)
	if err := ValidateAllocation(req); err != nil {
		return err
	}
	if req.From == nil {
		errors["from"] = "from is required"
	}
	if req.To == nil {
		errors["to"] = "to is required"
	}
	return result(errors)
}

// ValidateAllocationRemove additionally requires the position to remove.
func ValidateAllocationRemove(req request.AllocationRequest) error {
	if err := ValidateAllocation(req); err != nil {
		return err
	}
	if req.Index == nil {
		return &Error{Fields: map[string]string{"index": "index is required"}}
	}
	return nil
}
