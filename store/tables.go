// Package store holds the cumulative simulation tables and their CSV
// persistence. The sim core appends day results here; the analytics and api
// packages read from here.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/bizsim/bizsim/sim"
)

// Filter narrows table queries. Zero values match everything.
type Filter struct {
	From    time.Time // inclusive; zero = open
	To      time.Time // inclusive; zero = open
	Product string
	Region  string
	Channel string
}

func (f Filter) matchDate(d time.Time) bool {
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	return true
}

// Tables is the in-memory cumulative store of all simulated days.
// Safe for concurrent readers with a single writer (the day pipeline).
type Tables struct {
	mu        sync.RWMutex
	sales     []sim.SalesRow
	marketing []sim.MarketingRow
	inventory []sim.InventoryRow
}

// New returns an empty store.
func New() *Tables {
	return &Tables{}
}

// AppendDay appends one day's rows to the cumulative tables.
func (t *Tables) AppendDay(res *sim.DayResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sales = append(t.sales, res.Sales...)
	t.marketing = append(t.marketing, res.Marketing...)
	t.inventory = append(t.inventory, res.Inventory...)
}

// AppendRows bulk-appends already-generated rows, used when adopting the
// output of a finished history run.
func (t *Tables) AppendRows(sales []sim.SalesRow, marketing []sim.MarketingRow, inventory []sim.InventoryRow) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sales = append(t.sales, sales...)
	t.marketing = append(t.marketing, marketing...)
	t.inventory = append(t.inventory, inventory...)
}

// Sales returns the sales rows matching the filter, in insertion order.
func (t *Tables) Sales(f Filter) []sim.SalesRow {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := []sim.SalesRow{}
	for _, r := range t.sales {
		if !f.matchDate(r.Date) {
			continue
		}
		if f.Product != "" && r.Product != f.Product {
			continue
		}
		if f.Region != "" && r.Region != f.Region {
			continue
		}
		if f.Channel != "" && r.Channel != f.Channel {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Marketing returns the marketing rows matching the filter.
func (t *Tables) Marketing(f Filter) []sim.MarketingRow {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := []sim.MarketingRow{}
	for _, r := range t.marketing {
		if !f.matchDate(r.Date) {
			continue
		}
		if f.Channel != "" && r.Channel != f.Channel {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Inventory returns the inventory rows matching the filter.
func (t *Tables) Inventory(f Filter) []sim.InventoryRow {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := []sim.InventoryRow{}
	for _, r := range t.inventory {
		if !f.matchDate(r.Date) {
			continue
		}
		if f.Product != "" && r.Product != f.Product {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Counts reports the row counts of the three tables.
func (t *Tables) Counts() (sales, marketing, inventory int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sales), len(t.marketing), len(t.inventory)
}

// LastDate returns the most recent simulated date, taken from the inventory
// table (every day writes one inventory row per product). ok is false when
// the store is empty.
func (t *Tables) LastDate() (last time.Time, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.inventory {
		if r.Date.After(last) {
			last = r.Date
			ok = true
		}
	}
	return last, ok
}

// LastStockState reconstructs the stock state from each product's most
// recent inventory snapshot, for continuing a persisted history.
func (t *Tables) LastStockState() sim.StockState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]sim.InventoryRow, len(t.inventory))
	copy(rows, t.inventory)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	state := sim.StockState{}
	for _, r := range rows {
		state[r.Product] = r.ClosingStock
	}
	return state
}
