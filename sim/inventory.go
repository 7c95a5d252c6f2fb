package sim

import "math/rand"

// produceUnits draws the day's production volume for a product: an integer
// uniform on the inclusive configured range. With probability
// w.DisruptionProb the volume is cut to a DisruptionCut fraction of the
// drawn value, modelling a supply shock. The result is always >= 0.
func produceUnits(p Product, w *World, rng *rand.Rand) int {
	produced := p.ProductionMin + rng.Intn(p.ProductionMax-p.ProductionMin+1)
	if rng.Float64() < w.DisruptionProb {
		produced = int(float64(produced) * uniformIn(w.DisruptionCut, rng))
	}
	return produced
}

// closeStock runs the end-of-day inventory transition for one product and
// returns its InventoryRow. actualSold <= available is guaranteed upstream
// by the sales constraint, so closing stock is never negative.
func closeStock(r *InventoryRow) {
	r.ClosingStock = r.AvailableStock - r.ActualSold
	r.Stockout = r.ClosingStock <= 0
}
