// Package analytics computes deterministic KPIs over the simulation tables.
// It is a consumer of the sim core's output, never a contributor to it:
// everything here is plain aggregation with stable, explainable arithmetic.
package analytics

import (
	"sort"

	"github.com/bizsim/bizsim/sim"
	"github.com/bizsim/bizsim/store"
)

// Context binds the tables to the world configuration that produced them.
// The world supplies unit economics for profit arithmetic.
type Context struct {
	Tables *store.Tables
	World  *sim.World
}

// NameValue is one aggregation bucket, sorted by descending value.
type NameValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func sortedByValue(m map[string]float64) []NameValue {
	out := make([]NameValue, 0, len(m))
	for k, v := range m {
		out = append(out, NameValue{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RevenueByProduct sums sales revenue per product within the filter window.
func (c Context) RevenueByProduct(f store.Filter) []NameValue {
	m := map[string]float64{}
	for _, r := range c.Tables.Sales(f) {
		m[r.Product] += r.Revenue
	}
	return sortedByValue(m)
}

// RevenueByRegion sums sales revenue per region within the filter window.
func (c Context) RevenueByRegion(f store.Filter) []NameValue {
	m := map[string]float64{}
	for _, r := range c.Tables.Sales(f) {
		m[r.Region] += r.Revenue
	}
	return sortedByValue(m)
}

// RevenueByChannel sums sales revenue per channel within the filter window.
func (c Context) RevenueByChannel(f store.Filter) []NameValue {
	m := map[string]float64{}
	for _, r := range c.Tables.Sales(f) {
		m[r.Channel] += r.Revenue
	}
	return sortedByValue(m)
}

// ProductProfit is product-level profitability excluding marketing spend.
type ProductProfit struct {
	Product     string  `json:"product"`
	Revenue     float64 `json:"revenue"`
	Units       int     `json:"units"`
	ProductCost float64 `json:"product_cost"`
	Profit      float64 `json:"profit"`
	MarginPct   float64 `json:"profit_margin_pct"`
}

// ProfitByProduct computes revenue minus unit costs per product, sorted by
// descending revenue. Products absent from the catalog contribute zero cost.
func (c Context) ProfitByProduct(f store.Filter) []ProductProfit {
	type acc struct {
		revenue float64
		units   int
	}
	m := map[string]*acc{}
	for _, r := range c.Tables.Sales(f) {
		a, ok := m[r.Product]
		if !ok {
			a = &acc{}
			m[r.Product] = a
		}
		a.revenue += r.Revenue
		a.units += r.UnitsSold
	}

	out := make([]ProductProfit, 0, len(m))
	for name, a := range m {
		cost := 0.0
		if p, ok := c.World.ProductByName(name); ok {
			cost = float64(a.units) * p.Econ.UnitCost()
		}
		pp := ProductProfit{
			Product:     name,
			Revenue:     a.revenue,
			Units:       a.units,
			ProductCost: cost,
			Profit:      a.revenue - cost,
		}
		if a.revenue > 0 {
			pp.MarginPct = pp.Profit / a.revenue * 100
		}
		out = append(out, pp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Product < out[j].Product
	})
	return out
}

// ChannelEfficiency is channel-level marketing and profit performance.
// NetProfit = sales revenue - product costs - ad spend; ROAS and CAC guard
// division by zero with a zero result.
type ChannelEfficiency struct {
	Channel      string  `json:"channel"`
	Spend        float64 `json:"spend"`
	Revenue      float64 `json:"revenue"`
	Impressions  int     `json:"impressions"`
	Clicks       int     `json:"clicks"`
	Conversions  int     `json:"conversions"`
	ROAS         float64 `json:"roas"`
	CAC          float64 `json:"cac"`
	ProductCost  float64 `json:"product_cost"`
	NetProfit    float64 `json:"net_profit"`
	NetMarginPct float64 `json:"net_margin_pct"`
}

// EfficiencyByChannel rolls up the marketing funnel and true channel
// profitability within the filter window, sorted by descending spend.
func (c Context) EfficiencyByChannel(f store.Filter) []ChannelEfficiency {
	m := map[string]*ChannelEfficiency{}
	get := func(name string) *ChannelEfficiency {
		e, ok := m[name]
		if !ok {
			e = &ChannelEfficiency{Channel: name}
			m[name] = e
		}
		return e
	}

	for _, r := range c.Tables.Marketing(f) {
		e := get(r.Channel)
		e.Spend += r.Spend
		e.Revenue += r.Revenue
		e.Impressions += r.Impressions
		e.Clicks += r.Clicks
		e.Conversions += r.Conversions
	}
	for _, r := range c.Tables.Sales(f) {
		e := get(r.Channel)
		if p, ok := c.World.ProductByName(r.Product); ok {
			e.ProductCost += float64(r.UnitsSold) * p.Econ.UnitCost()
		}
	}

	out := make([]ChannelEfficiency, 0, len(m))
	for _, e := range m {
		if e.Spend > 0 {
			e.ROAS = e.Revenue / e.Spend
		}
		if e.Conversions > 0 {
			e.CAC = e.Spend / float64(e.Conversions)
		}
		e.NetProfit = e.Revenue - e.ProductCost - e.Spend
		if e.Revenue > 0 {
			e.NetMarginPct = e.NetProfit / e.Revenue * 100
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spend != out[j].Spend {
			return out[i].Spend > out[j].Spend
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}

// InventoryHealth links stock availability to revenue outcomes per product.
type InventoryHealth struct {
	Product         string  `json:"product"`
	DaysObserved    int     `json:"days_observed"`
	StockoutDays    int     `json:"stockout_days"`
	AvgClosingStock float64 `json:"avg_closing_stock"`
	LostUnits       int     `json:"lost_units"`
	LostRevenue     float64 `json:"lost_revenue_estimated"`
}

// HealthByProduct summarizes stockout pressure in the filter window. Lost
// revenue is estimated at the product's configured selling price, sorted by
// stockout days then product name.
func (c Context) HealthByProduct(f store.Filter) []InventoryHealth {
	m := map[string]*InventoryHealth{}
	closing := map[string]int{}
	for _, r := range c.Tables.Inventory(f) {
		h, ok := m[r.Product]
		if !ok {
			h = &InventoryHealth{Product: r.Product}
			m[r.Product] = h
		}
		h.DaysObserved++
		if r.Stockout {
			h.StockoutDays++
		}
		h.LostUnits += r.LostDemand
		closing[r.Product] += r.ClosingStock
	}

	out := make([]InventoryHealth, 0, len(m))
	for name, h := range m {
		if h.DaysObserved > 0 {
			h.AvgClosingStock = float64(closing[name]) / float64(h.DaysObserved)
		}
		if p, ok := c.World.ProductByName(name); ok {
			h.LostRevenue = float64(h.LostUnits) * p.Econ.SellingPrice
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockoutDays != out[j].StockoutDays {
			return out[i].StockoutDays > out[j].StockoutDays
		}
		return out[i].Product < out[j].Product
	})
	return out
}
