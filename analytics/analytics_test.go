package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bizsim/bizsim/sim"
	"github.com/bizsim/bizsim/store"
)

func fixtureContext(t *testing.T, days int, seed int64) Context {
	t.Helper()
	w := sim.DefaultWorld()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := sim.NewSimulator(w, seed, start, start.AddDate(0, 0, days-1))
	assert.NoError(t, err)
	assert.NoError(t, s.Run())

	tbl := store.New()
	tbl.AppendDay(&sim.DayResult{Sales: s.Sales, Marketing: s.Marketing, Inventory: s.Inventory})
	return Context{Tables: tbl, World: w}
}

func TestRevenueBreakdowns_SumToTotal(t *testing.T) {
	ctx := fixtureContext(t, 10, 3)

	total := 0.0
	for _, r := range ctx.Tables.Sales(store.Filter{}) {
		total += r.Revenue
	}

	for _, breakdown := range [][]NameValue{
		ctx.RevenueByProduct(store.Filter{}),
		ctx.RevenueByRegion(store.Filter{}),
		ctx.RevenueByChannel(store.Filter{}),
	} {
		sum := 0.0
		for _, nv := range breakdown {
			sum += nv.Value
		}
		assert.InDelta(t, total, sum, 1e-6, "each breakdown must partition total revenue")
	}

	// Descending order.
	byProduct := ctx.RevenueByProduct(store.Filter{})
	for i := 1; i < len(byProduct); i++ {
		assert.GreaterOrEqual(t, byProduct[i-1].Value, byProduct[i].Value)
	}
}

func TestProfitByProduct(t *testing.T) {
	ctx := fixtureContext(t, 7, 11)

	for _, pp := range ctx.ProfitByProduct(store.Filter{}) {
		p, ok := ctx.World.ProductByName(pp.Product)
		assert.True(t, ok)
		assert.InDelta(t, float64(pp.Units)*p.Econ.UnitCost(), pp.ProductCost, 1e-6)
		assert.InDelta(t, pp.Revenue-pp.ProductCost, pp.Profit, 1e-6)
		if pp.Revenue > 0 {
			assert.InDelta(t, pp.Profit/pp.Revenue*100, pp.MarginPct, 1e-6)
		}
	}
}

func TestEfficiencyByChannel(t *testing.T) {
	ctx := fixtureContext(t, 14, 21)

	effs := ctx.EfficiencyByChannel(store.Filter{})
	assert.Len(t, effs, len(ctx.World.Channels))

	for _, e := range effs {
		if e.Spend > 0 {
			assert.InDelta(t, e.Revenue/e.Spend, e.ROAS, 1e-9)
		}
		if e.Conversions > 0 {
			assert.InDelta(t, e.Spend/float64(e.Conversions), e.CAC, 1e-9)
		}
		assert.InDelta(t, e.Revenue-e.ProductCost-e.Spend, e.NetProfit, 1e-6)
		assert.GreaterOrEqual(t, e.Impressions, e.Clicks)
		assert.GreaterOrEqual(t, e.Clicks, e.Conversions)
	}
}

func TestHealthByProduct(t *testing.T) {
	ctx := fixtureContext(t, 30, 5)

	healths := ctx.HealthByProduct(store.Filter{})
	assert.Len(t, healths, len(ctx.World.Products))

	for _, h := range healths {
		assert.Equal(t, 30, h.DaysObserved)
		assert.GreaterOrEqual(t, h.StockoutDays, 0)
		assert.LessOrEqual(t, h.StockoutDays, h.DaysObserved)
		assert.GreaterOrEqual(t, h.LostUnits, 0)
		p, ok := ctx.World.ProductByName(h.Product)
		assert.True(t, ok)
		assert.InDelta(t, float64(h.LostUnits)*p.Econ.SellingPrice, h.LostRevenue, 1e-6)
	}
}

func TestKPIs_StableUnderFixedSeed(t *testing.T) {
	a := fixtureContext(t, 10, 42)
	b := fixtureContext(t, 10, 42)

	assert.Equal(t, a.RevenueByProduct(store.Filter{}), b.RevenueByProduct(store.Filter{}))
	assert.Equal(t, a.EfficiencyByChannel(store.Filter{}), b.EfficiencyByChannel(store.Filter{}))
	assert.Equal(t, a.HealthByProduct(store.Filter{}), b.HealthByProduct(store.Filter{}))
}
