package sim

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SimulateDay runs the full daily pipeline for one calendar date:
//
//	demand -> production -> sales constraint -> region/channel allocation
//	       -> inventory close -> marketing funnel -> CAC attribution
//
// It is a pure function of (date, world, prior state, rng): the prior state
// is not mutated, and the updated state is returned alongside the day's
// rows. Configuration and state are validated before any row is produced;
// on error the day yields no output at all.
func SimulateDay(date time.Time, w *World, prior StockState, rng *PartitionedRNG) (*DayResult, StockState, error) {
	if err := w.Validate(); err != nil {
		return nil, nil, err
	}
	if err := validateState(w, prior); err != nil {
		return nil, nil, err
	}

	demandRNG := rng.ForSubsystem(SubsystemDemand)
	productionRNG := rng.ForSubsystem(SubsystemProduction)
	allocationRNG := rng.ForSubsystem(SubsystemAllocation)
	marketingRNG := rng.ForSubsystem(SubsystemMarketing)

	res := &DayResult{Date: date}
	next := prior.Clone()

	// Index from channel name to the sales row positions needing a CAC
	// patch after the marketing stage.
	rowsByChannel := make(map[string][]int, len(w.Channels))

	for _, p := range w.Products {
		demand := dailyDemand(p, w.DemandNoise, demandRNG)

		opening := prior[p.Name]
		produced := produceUnits(p, w, productionRNG)
		available := opening + produced

		// Hard physical constraint: never sell past available stock.
		actualSold := demand
		if actualSold > available {
			actualSold = available
		}
		lost := demand - actualSold

		res.Sales = allocateSales(date, p, actualSold, w, allocationRNG, res.Sales, rowsByChannel)

		inv := InventoryRow{
			Date:           date,
			Product:        p.Name,
			OpeningStock:   opening,
			Produced:       produced,
			AvailableStock: available,
			ActualSold:     actualSold,
			LostDemand:     lost,
		}
		closeStock(&inv)
		res.Inventory = append(res.Inventory, inv)
		next[p.Name] = inv.ClosingStock

		logrus.Debugf("[%s] %s: demand=%d produced=%d sold=%d closing=%d",
			date.Format(DateLayout), p.Name, demand, produced, actualSold, inv.ClosingStock)
	}

	revenueByChannel := make(map[string]float64, len(w.Channels))
	for _, s := range res.Sales {
		revenueByChannel[s.Channel] += s.Revenue
	}

	res.Marketing = simulateMarketing(date, w, revenueByChannel, marketingRNG)
	attributeCAC(res.Sales, res.Marketing, rowsByChannel)

	return res, next, nil
}
