package sim

import (
	"math"
	"math/rand"
	"time"
)

// simulateMarketing builds one MarketingRow per configured channel from that
// channel's aggregated sales revenue for the day. Channels with no sales
// still get a row (zero revenue, zero spend, empty funnel).
//
// Funnel model: spend = revenue * U[spend band]; impressions =
// round(spend * U[impressions-per-spend band]); clicks = round(impressions *
// U[ctr band]); conversions = round(clicks * U[cvr band]). CTR and CVR bands
// lie in (0, 1], so impressions >= clicks >= conversions >= 0 by
// construction.
func simulateMarketing(date time.Time, w *World, revenueByChannel map[string]float64, rng *rand.Rand) []MarketingRow {
	rows := make([]MarketingRow, 0, len(w.Channels))
	for _, c := range w.Channels {
		revenue := revenueByChannel[c.Name]
		spend := round2(revenue * uniformIn(c.SpendBand, rng))

		impressions := safeCount(spend * uniformIn(w.ImpressionsPerSpend, rng))
		clicks := safeCount(float64(impressions) * uniformIn(c.CTRBand, rng))
		conversions := safeCount(float64(clicks) * uniformIn(c.CVRBand, rng))

		rows = append(rows, MarketingRow{
			Date:        date,
			Channel:     c.Name,
			Revenue:     revenue,
			Spend:       spend,
			Impressions: impressions,
			Clicks:      clicks,
			Conversions: conversions,
			CAC:         acquisitionCost(spend, conversions),
		})
	}
	return rows
}

// acquisitionCost is spend per conversion for a channel-day. Zero
// conversions is not an error: the defined sentinel is 0, meaning no
// acquisition cost is attributable.
func acquisitionCost(spend float64, conversions int) float64 {
	if conversions <= 0 {
		return 0
	}
	return round2(spend / float64(conversions))
}

// attributeCAC patches each channel-day's CAC onto every sales row of that
// channel, using the row-index map built during allocation. Runs strictly
// after the funnel simulation; once it returns the day's sales rows are
// final.
func attributeCAC(sales []SalesRow, marketing []MarketingRow, rowsByChannel map[string][]int) {
	for _, m := range marketing {
		for _, idx := range rowsByChannel[m.Channel] {
			sales[idx].CAC = m.CAC
		}
	}
}

// safeCount rounds a derived funnel quantity to a non-negative integer.
// Rounding cannot break the funnel ordering: each stage's input bound is an
// integer, so the rounded value never exceeds it.
func safeCount(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}
