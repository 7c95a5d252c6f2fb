package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testDate() time.Time {
	return time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
}

func TestSimulateDay_Invariants(t *testing.T) {
	w := DefaultWorld()

	for seed := int64(0); seed < 20; seed++ {
		rng := NewPartitionedRNG(NewSimulationKey(seed))
		res, next, err := SimulateDay(testDate(), w, NewStockState(w), rng)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		soldByProduct := map[string]int{}
		for _, s := range res.Sales {
			if s.UnitsSold <= 0 {
				t.Fatalf("seed %d: zero or negative units row emitted: %+v", seed, s)
			}
			if s.Revenue != float64(s.UnitsSold)*s.SellingPrice {
				t.Fatalf("seed %d: revenue mismatch: %+v", seed, s)
			}
			soldByProduct[s.Product] += s.UnitsSold
		}

		for _, inv := range res.Inventory {
			if inv.ActualSold > inv.AvailableStock {
				t.Fatalf("seed %d: oversold %s: %+v", seed, inv.Product, inv)
			}
			if inv.ClosingStock < 0 {
				t.Fatalf("seed %d: negative closing stock: %+v", seed, inv)
			}
			if inv.AvailableStock != inv.OpeningStock+inv.Produced {
				t.Fatalf("seed %d: available != opening+produced: %+v", seed, inv)
			}
			if inv.ClosingStock != inv.AvailableStock-inv.ActualSold {
				t.Fatalf("seed %d: closing != available-sold: %+v", seed, inv)
			}
			if inv.Produced < 0 {
				t.Fatalf("seed %d: negative production: %+v", seed, inv)
			}
			// Unit conservation: allocated rows must account for every
			// sold unit, exactly.
			if soldByProduct[inv.Product] != inv.ActualSold {
				t.Fatalf("seed %d: %s allocation leaks units: rows=%d sold=%d",
					seed, inv.Product, soldByProduct[inv.Product], inv.ActualSold)
			}
			if next[inv.Product] != inv.ClosingStock {
				t.Fatalf("seed %d: state not updated from closing stock", seed)
			}
		}
	}
}

func TestSimulateDay_CACUniformPerChannel(t *testing.T) {
	w := DefaultWorld()
	rng := NewPartitionedRNG(NewSimulationKey(3))
	res, _, err := SimulateDay(testDate(), w, NewStockState(w), rng)
	assert.NoError(t, err)

	cacByChannel := map[string]float64{}
	for _, m := range res.Marketing {
		cacByChannel[m.Channel] = m.CAC
		if m.Conversions > 0 {
			assert.Equal(t, round2(m.Spend/float64(m.Conversions)), m.CAC)
		} else {
			assert.Zero(t, m.CAC)
		}
	}
	for _, s := range res.Sales {
		assert.Equal(t, cacByChannel[s.Channel], s.CAC,
			"sales row CAC must equal its channel-day CAC")
	}
}

// Demand 120 against opening 50 plus production in [100, 140]: available
// lands in [150, 190] and nothing can oversell.
func TestSimulateDay_ScenarioConstrained(t *testing.T) {
	w := DefaultWorld()
	w.Products = []Product{{
		Name:            "Nutrain Vanilla",
		BaseDailyDemand: 120,
		ProductionMin:   100,
		ProductionMax:   140,
		Econ:            UnitEconomics{SellingPrice: 180, COGS: 82, PackagingCost: 10, LogisticsCost: 9},
	}}
	w.DisruptionProb = 0

	state := StockState{"Nutrain Vanilla": 50}
	res, next, err := SimulateDay(testDate(), w, state, NewPartitionedRNG(NewSimulationKey(8)))
	assert.NoError(t, err)

	inv := res.Inventory[0]
	assert.Equal(t, 50, inv.OpeningStock)
	assert.GreaterOrEqual(t, inv.AvailableStock, 150)
	assert.LessOrEqual(t, inv.AvailableStock, 190)
	assert.LessOrEqual(t, inv.ActualSold, inv.AvailableStock)
	assert.Equal(t, inv.AvailableStock-inv.ActualSold, inv.ClosingStock)
	assert.Equal(t, inv.ClosingStock, next["Nutrain Vanilla"])
	assert.Equal(t, inv.ClosingStock <= 0, inv.Stockout)
	// Prior state untouched.
	assert.Equal(t, 50, state["Nutrain Vanilla"])
}

// Degenerate day: no opening stock and no production means nothing can be
// sold, the day is a stockout, and no sales row reports positive units.
func TestSimulateDay_ScenarioEmptyShelf(t *testing.T) {
	w := DefaultWorld()
	w.Products = []Product{{
		Name:            "Nutrain Banana Oats",
		BaseDailyDemand: 50,
		ProductionMin:   0,
		ProductionMax:   0,
		Econ:            UnitEconomics{SellingPrice: 170, COGS: 76, PackagingCost: 9, LogisticsCost: 9},
	}}
	w.DisruptionProb = 0

	state := StockState{"Nutrain Banana Oats": 0}
	res, next, err := SimulateDay(testDate(), w, state, NewPartitionedRNG(NewSimulationKey(4)))
	assert.NoError(t, err)

	assert.Empty(t, res.Sales, "no units available, no sales rows")

	inv := res.Inventory[0]
	assert.Equal(t, 0, inv.AvailableStock)
	assert.Equal(t, 0, inv.ActualSold)
	assert.Equal(t, 0, inv.ClosingStock)
	assert.True(t, inv.Stockout)
	assert.Greater(t, inv.LostDemand, 0, "all demand was lost")
	assert.Equal(t, 0, next["Nutrain Banana Oats"])

	// Marketing rows still exist, with empty funnels.
	assert.Len(t, res.Marketing, len(w.Channels))
	for _, m := range res.Marketing {
		assert.Zero(t, m.Spend)
	}
}

func TestSimulateDay_Determinism(t *testing.T) {
	w := DefaultWorld()
	date := testDate()

	run := func() (*DayResult, StockState) {
		res, next, err := SimulateDay(date, w, NewStockState(w), NewPartitionedRNG(NewSimulationKey(42)))
		assert.NoError(t, err)
		return res, next
	}

	res1, next1 := run()
	res2, next2 := run()

	assert.Equal(t, res1, res2, "same seed and state must reproduce the day exactly")
	assert.Equal(t, next1, next2)
}

func TestSimulateDay_FailFast(t *testing.T) {
	w := DefaultWorld()
	rng := NewPartitionedRNG(NewSimulationKey(1))

	// Bad config: no rows at all.
	bad := DefaultWorld()
	bad.Products[0].BaseDailyDemand = -1
	res, next, err := SimulateDay(testDate(), bad, NewStockState(bad), rng)
	assert.Error(t, err)
	assert.Nil(t, res)
	assert.Nil(t, next)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	// Bad state: negative opening stock.
	state := NewStockState(w)
	state["Nutrain Vanilla"] = -10
	res, _, err = SimulateDay(testDate(), w, state, rng)
	assert.Error(t, err)
	assert.Nil(t, res)
	var stErr *StateConsistencyError
	assert.ErrorAs(t, err, &stErr)

	// Bad state: product missing entirely.
	state = NewStockState(w)
	delete(state, "Nutrain Choco Coffee")
	_, _, err = SimulateDay(testDate(), w, state, rng)
	assert.ErrorAs(t, err, &stErr)
}
