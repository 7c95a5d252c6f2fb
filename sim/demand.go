package sim

import (
	"math"
	"math/rand"
)

// uniformIn draws a uniform value from the band.
func uniformIn(b Band, rng *rand.Rand) float64 {
	return b.Min + rng.Float64()*(b.Max-b.Min)
}

// round2 rounds to currency precision (two decimal places).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// dailyDemand computes one product's demand for one day:
// round(base * noise) with noise drawn uniformly from the world's demand
// noise band. The band is strictly positive, so demand is never negative.
func dailyDemand(p Product, noise Band, rng *rand.Rand) int {
	return int(math.Round(float64(p.BaseDailyDemand) * uniformIn(noise, rng)))
}
