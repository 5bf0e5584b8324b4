package allocation

// Anchor is the portfolio-level dollar total that links asset weights and
// amounts. It is either Unanchored (no total defined, only weights are
// meaningful) or Anchored with a positive total (both fields derivable).
type Anchor interface {
	// Total returns the anchored total and whether one is defined.
	Total() (float64, bool)
	anchor()
}

// Unanchored means no portfolio total has been set.
type Unanchored struct{}

func (Unanchored) Total() (float64, bool) { return 0, false }
func (Unanchored) anchor()                {}

// Anchored carries a positive portfolio total.
type Anchored struct {
	Amount float64
}

func (a Anchored) Total() (float64, bool) { return a.Amount, true }
func (Anchored) anchor()                  {}

// NewAnchor returns Anchored for a positive total and Unanchored otherwise.
func NewAnchor(total float64) Anchor {
	if total > 0 {
		return Anchored{Amount: total}
	}
	return Unanchored{}
}
