// Package allocation maintains the ordered asset list of a portfolio.
//
// Every asset carries a fractional weight and, optionally, a dollar amount.
// The two are linked through the allocation's Anchor: while unanchored only
// weights are meaningful; once a total is set, amounts and weights convert
// into one another (weights rounded to 4 decimals, amounts to 2).
//
// All operations validate before mutating, so a returned error always means
// the allocation is unchanged.
package allocation

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Planner-Backend/internal/model"
	"github.com/ndewijer/Investment-Planner-Backend/internal/precision"
)

// WeightTolerance is how far the weight total may drift from 1.0 and still be saved.
const WeightTolerance = 0.01

// Allocation is an editable asset list together with its anchor.
type Allocation struct {
	Assets []model.Asset
	Anchor Anchor
}

// AssetInput is a requested asset add or edit. A zero Weight or Amount means
// the field was left empty. When both are filled Amount wins.
type AssetInput struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Type          string  `json:"type,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	DividendYield float64 `json:"dividendYield,omitempty"`
}

// Warning is a non-fatal condition the caller should surface to the user.
type Warning struct {
	Symbol  string `json:"symbol"`
	Message string `json:"message"`
}

// New returns an allocation over a copy of assets with the given anchor.
func New(assets []model.Asset, anchor Anchor) *Allocation {
	if anchor == nil {
		anchor = Unanchored{}
	}
	copied := make([]model.Asset, len(assets))
	copy(copied, assets)
	return &Allocation{Assets: copied, Anchor: anchor}
}

// FromPortfolio opens the portfolio's assets for editing. The anchor is the sum
// of the stored asset amounts, or Unanchored when none carries an amount.
func FromPortfolio(p model.Portfolio) *Allocation {
	a := New(p.Assets, Unanchored{})
	a.Anchor = NewAnchor(a.TotalAmount())
	return a
}

// TotalWeight returns the sum of all weights.
func (a *Allocation) TotalWeight() float64 {
	weights := make([]float64, len(a.Assets))
	for i, asset := range a.Assets {
		weights[i] = asset.Weight
	}
	return floats.Sum(weights)
}

// TotalAmount returns the sum of all asset amounts.
func (a *Allocation) TotalAmount() float64 {
	amounts := make([]float64, len(a.Assets))
	for i, asset := range a.Assets {
		amounts[i] = asset.Amount
	}
	return floats.Sum(amounts)
}

// SetTotalAmount anchors the allocation at total. Assets with an amount get
// their weight recomputed from it; assets with only a weight get an amount.
// A non-positive total removes the anchor and leaves assets untouched.
func (a *Allocation) SetTotalAmount(total float64) {
	a.Anchor = NewAnchor(total)
	if _, ok := a.Anchor.Total(); !ok {
		return
	}

	for i := range a.Assets {
		asset := &a.Assets[i]
		switch {
		case asset.Amount > 0:
			asset.Weight = precision.Weight(asset.Amount / total)
		case asset.Weight > 0:
			asset.Amount = precision.Money(asset.Weight * total)
		}
	}
}

// AddAsset appends a new asset. It returns a Warning when the asset was given
// an amount but no total is anchored yet, so its weight stays 0 until the
// allocation is anchored or normalized.
func (a *Allocation) AddAsset(in AssetInput) (*Warning, error) {
	asset, warning, err := a.resolve(in, -1)
	if err != nil {
		return nil, err
	}
	a.Assets = append(a.Assets, asset)
	return warning, nil
}

// EditAsset replaces the asset at index with the resolved input.
func (a *Allocation) EditAsset(index int, in AssetInput) (*Warning, error) {
	if err := a.checkIndex("index", index); err != nil {
		return nil, err
	}
	asset, warning, err := a.resolve(in, index)
	if err != nil {
		return nil, err
	}
	a.Assets[index] = asset
	return warning, nil
}

// RemoveAsset drops the asset at index. Weights are not renormalized.
func (a *Allocation) RemoveAsset(index int) error {
	if err := a.checkIndex("index", index); err != nil {
		return err
	}
	a.Assets = append(a.Assets[:index], a.Assets[index+1:]...)
	return nil
}

// NormalizeWeights rescales every weight so the total becomes 1. Each weight
// is rounded to 4 decimals; the rounding residue (a few ten-thousandths at
// most) is folded into the largest weight so the total is exactly 1.
//
// This differs from plain per-asset round4(w/total): three equal weights
// normalize to 0.3334/0.3333/0.3333 rather than 0.3333 each, and long asset
// lists cannot drift away from 1 by accumulated rounding.
func (a *Allocation) NormalizeWeights() error {
	total := a.TotalWeight()
	if total == 0 {
		return apperrors.NewValidationError("weights", "no asset has a weight assigned")
	}

	largest := 0
	for i := range a.Assets {
		a.Assets[i].Weight = precision.Weight(a.Assets[i].Weight / total)
		if a.Assets[i].Weight > a.Assets[largest].Weight {
			largest = i
		}
	}
	if residue := precision.Weight(1 - a.TotalWeight()); residue != 0 {
		a.Assets[largest].Weight = precision.Weight(a.Assets[largest].Weight + residue)
	}
	return nil
}

// RecalculateWeightsFromAmounts derives the weight of every asset carrying an
// amount from the anchored total. Assets without an amount keep their weight.
func (a *Allocation) RecalculateWeightsFromAmounts() error {
	total, ok := a.Anchor.Total()
	if !ok || total <= 0 {
		return apperrors.NewValidationError("totalAmount", "the portfolio total amount must be set first")
	}
	if a.TotalAmount() <= 0 {
		return apperrors.NewValidationError("amount", "no asset has an amount assigned")
	}
	for i := range a.Assets {
		if a.Assets[i].Amount > 0 {
			a.Assets[i].Weight = precision.Weight(a.Assets[i].Amount / total)
		}
	}
	return nil
}

// Validate is the save precondition: the weights must add up to 100% within
// WeightTolerance. The error message carries the actual percentage.
func (a *Allocation) Validate() error {
	total := a.TotalWeight()
	if math.Abs(total-1.0) > WeightTolerance {
		return apperrors.NewValidationError("weights",
			"asset weights must add up to 100%%, got %.2f%%", total*100)
	}
	return nil
}

// Reorder moves the asset at from to position to.
func (a *Allocation) Reorder(from, to int) error {
	if err := a.checkIndex("from", from); err != nil {
		return err
	}
	if err := a.checkIndex("to", to); err != nil {
		return err
	}
	moved := a.Assets[from]
	a.Assets = append(a.Assets[:from], a.Assets[from+1:]...)
	a.Assets = append(a.Assets[:to], append([]model.Asset{moved}, a.Assets[to:]...)...)
	return nil
}

// resolve validates an input and turns it into an asset. skip is the index
// being edited, excluded from the duplicate symbol check.
func (a *Allocation) resolve(in AssetInput, skip int) (model.Asset, *Warning, error) {
	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	name := strings.TrimSpace(in.Name)

	errs := make(map[string]string)
	if symbol == "" {
		errs["symbol"] = "symbol is required"
	}
	if name == "" {
		errs["name"] = "name is required"
	}
	if in.Weight == 0 && in.Amount == 0 {
		errs["weight"] = "either weight or amount is required"
	}
	if in.DividendYield < 0 {
		errs["dividendYield"] = "dividend yield cannot be negative"
	}
	if len(errs) > 0 {
		return model.Asset{}, nil, &apperrors.ValidationError{Fields: errs}
	}

	for i, existing := range a.Assets {
		if i != skip && existing.Symbol == symbol {
			return model.Asset{}, nil, apperrors.NewValidationError("symbol", "symbol %s already exists", symbol)
		}
	}

	asset := model.Asset{
		Symbol:        symbol,
		Name:          name,
		Type:          strings.TrimSpace(in.Type),
		DividendYield: in.DividendYield,
	}
	total, anchored := a.Anchor.Total()

	var warning *Warning
	if in.Amount != 0 {
		if in.Amount <= 0 {
			return model.Asset{}, nil, apperrors.NewValidationError("amount", "amount must be greater than 0")
		}
		asset.Amount = in.Amount
		if anchored {
			asset.Weight = precision.Weight(in.Amount / total)
		} else {
			warning = &Warning{
				Symbol:  symbol,
				Message: "set the portfolio total amount to derive the weight; saved with weight 0 for now",
			}
		}
	} else {
		if in.Weight <= 0 || in.Weight > 1 {
			return model.Asset{}, nil, apperrors.NewValidationError("weight", "weight must be between 0 and 1")
		}
		asset.Weight = in.Weight
		if anchored {
			asset.Amount = precision.Money(in.Weight * total)
		}
	}

	return asset, warning, nil
}

func (a *Allocation) checkIndex(field string, index int) error {
	if index < 0 || index >= len(a.Assets) {
		return apperrors.NewValidationError(field, "index %d out of range [0,%d)", index, len(a.Assets))
	}
	return nil
}
