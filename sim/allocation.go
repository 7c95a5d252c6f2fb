package sim

import (
	"math/rand"
	"time"
)

// splitUnits distributes total units across len(weights) buckets as a
// weighted multinomial draw, preserving the sum exactly.
//
// Method: sequential conditional binomial sampling. Bucket i receives
// Binomial(remaining, w_i / remainingWeight); the final bucket takes the
// remainder. This is a standard exact decomposition of the multinomial, so
// no rounding correction is needed and the output always sums to total.
func splitUnits(total int, weights []float64, rng *rand.Rand) []int {
	out := make([]int, len(weights))
	if total <= 0 || len(weights) == 0 {
		return out
	}

	var remainingWeight float64
	for _, w := range weights {
		remainingWeight += w
	}

	remaining := total
	for i := 0; i < len(weights)-1; i++ {
		if remaining == 0 {
			break
		}
		p := 0.0
		if remainingWeight > 0 {
			p = weights[i] / remainingWeight
		}
		n := binomial(remaining, p, rng)
		out[i] = n
		remaining -= n
		remainingWeight -= weights[i]
	}
	out[len(weights)-1] += remaining
	return out
}

// binomial draws from Binomial(n, p) by direct Bernoulli counting. Daily
// unit volumes are a few hundred at most, so the O(n) draw is fine and
// keeps the stream trivially reproducible.
func binomial(n int, p float64, rng *rand.Rand) int {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}
	k := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < p {
			k++
		}
	}
	return k
}

// allocateSales splits a product's actualSold units across regions, then
// across channels within each region, and appends one SalesRow per non-zero
// (region, channel) cell. It records the index of every appended row in
// rowsByChannel so the CAC attribution stage can patch rows without a table
// rescan. Returns the extended sales slice.
//
// The per-cell unit sums are exact: every unit of actualSold lands in
// exactly one output cell.
func allocateSales(date time.Time, p Product, actualSold int, w *World, rng *rand.Rand,
	sales []SalesRow, rowsByChannel map[string][]int) []SalesRow {

	regionWeights := make([]float64, len(w.Regions))
	for i, r := range w.Regions {
		regionWeights[i] = r.Weight
	}
	channelWeights := make([]float64, len(w.Channels))
	for i, c := range w.Channels {
		channelWeights[i] = c.Weight
	}

	regionUnits := splitUnits(actualSold, regionWeights, rng)
	for ri, r := range w.Regions {
		if regionUnits[ri] == 0 {
			continue
		}
		channelUnits := splitUnits(regionUnits[ri], channelWeights, rng)
		for ci, c := range w.Channels {
			units := channelUnits[ci]
			if units == 0 {
				continue
			}
			rowsByChannel[c.Name] = append(rowsByChannel[c.Name], len(sales))
			sales = append(sales, SalesRow{
				Date:         date,
				Product:      p.Name,
				Region:       r.Name,
				Channel:      c.Name,
				UnitsSold:    units,
				SellingPrice: p.Econ.SellingPrice,
				Revenue:      float64(units) * p.Econ.SellingPrice,
			})
		}
	}
	return sales
}
