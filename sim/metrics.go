// Tracks run-wide totals for final reporting at the end of a history run.

package sim

import "fmt"

// Metrics aggregates statistics across all simulated days. Useful for
// sanity-checking a generated history and for the run summary.
type Metrics struct {
	DaysSimulated int
	SalesRows     int
	MarketingRows int
	InventoryRows int

	TotalUnitsSold   int
	TotalLostDemand  int
	StockoutDays     int // product-days ending in stockout
	DisruptedVolume  int // units produced below range minimum
	TotalRevenue     float64
	TotalSpend       float64
	TotalConversions int
}

// Observe folds one day's result into the totals.
func (m *Metrics) Observe(res *DayResult) {
	m.DaysSimulated++
	m.SalesRows += len(res.Sales)
	m.MarketingRows += len(res.Marketing)
	m.InventoryRows += len(res.Inventory)

	for _, s := range res.Sales {
		m.TotalUnitsSold += s.UnitsSold
		m.TotalRevenue += s.Revenue
	}
	for _, mk := range res.Marketing {
		m.TotalSpend += mk.Spend
		m.TotalConversions += mk.Conversions
	}
	for _, inv := range res.Inventory {
		m.TotalLostDemand += inv.LostDemand
		if inv.Stockout {
			m.StockoutDays++
		}
	}
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Days simulated       : %d\n", m.DaysSimulated)
	fmt.Printf("Sales rows           : %d\n", m.SalesRows)
	fmt.Printf("Marketing rows       : %d\n", m.MarketingRows)
	fmt.Printf("Inventory rows       : %d\n", m.InventoryRows)
	fmt.Printf("Units sold           : %d\n", m.TotalUnitsSold)
	fmt.Printf("Lost demand (units)  : %d\n", m.TotalLostDemand)
	fmt.Printf("Stockout product-days: %d\n", m.StockoutDays)
	fmt.Printf("Total revenue        : %.2f\n", m.TotalRevenue)
	fmt.Printf("Total ad spend       : %.2f\n", m.TotalSpend)
	fmt.Printf("Total conversions    : %d\n", m.TotalConversions)
	if m.TotalSpend > 0 {
		fmt.Printf("Blended ROAS         : %.2f\n", m.TotalRevenue/m.TotalSpend)
	}
}
