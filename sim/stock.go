package sim

// StockState maps product name to its closing stock at the end of the most
// recently simulated day. It is the only information carried across day
// boundaries: day t's closing stock becomes day t+1's opening stock.
type StockState map[string]int

// NewStockState seeds a fresh state with the world's starting stock for
// every configured product. Used on day one of a generated history.
func NewStockState(w *World) StockState {
	s := make(StockState, len(w.Products))
	for _, p := range w.Products {
		s[p.Name] = w.StartingStock
	}
	return s
}

// Clone returns an independent copy of the state.
func (s StockState) Clone() StockState {
	out := make(StockState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// validateState confirms the prior state can seed a day's run: every
// configured product present, no negative opening stock.
func validateState(w *World, state StockState) error {
	for _, p := range w.Products {
		opening, ok := state[p.Name]
		if !ok {
			return &StateConsistencyError{Product: p.Name, Reason: "missing from prior state"}
		}
		if opening < 0 {
			return &StateConsistencyError{Product: p.Name, Reason: "negative opening stock"}
		}
	}
	return nil
}
