// sim/simulator.go
package sim

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Simulator drives the day pipeline over an inclusive date range, carrying
// the stock state across day boundaries and accumulating the cumulative
// tables. Days run strictly sequentially; there is no valid way to
// parallelize across days because of the stock carry-forward dependency.
type Simulator struct {
	World *World
	Start time.Time
	End   time.Time

	State StockState
	RNG   *PartitionedRNG

	Sales     []SalesRow
	Marketing []MarketingRow
	Inventory []InventoryRow

	Metrics *Metrics
}

// NewSimulator builds a Simulator for the inclusive [start, end] range with
// a fresh stock state seeded from the world's starting stock. The world is
// validated up front so a bad configuration fails before any day runs.
func NewSimulator(w *World, seed int64, start, end time.Time) (*Simulator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, &ConfigurationError{Field: "dates", Reason: "end date before start date"}
	}
	return &Simulator{
		World:   w,
		Start:   start,
		End:     end,
		State:   NewStockState(w),
		RNG:     NewPartitionedRNG(NewSimulationKey(seed)),
		Metrics: &Metrics{},
	}, nil
}

// Run simulates every day in the range in increasing date order.
func (s *Simulator) Run() error {
	for cur := s.Start; !cur.After(s.End); cur = cur.AddDate(0, 0, 1) {
		res, next, err := SimulateDay(cur, s.World, s.State, s.RNG)
		if err != nil {
			return err
		}
		s.Sales = append(s.Sales, res.Sales...)
		s.Marketing = append(s.Marketing, res.Marketing...)
		s.Inventory = append(s.Inventory, res.Inventory...)
		s.State = next
		s.Metrics.Observe(res)

		logrus.Infof("[%s] simulated: %d sales rows, %d units sold",
			cur.Format(DateLayout), len(res.Sales), dayUnits(res))
	}
	return nil
}

func dayUnits(res *DayResult) int {
	units := 0
	for _, s := range res.Sales {
		units += s.UnitsSold
	}
	return units
}
