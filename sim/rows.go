package sim

import "time"

// SalesRow is one (date, product, region, channel) cell with non-zero
// allocated units. Zero-unit allocations are omitted to keep the table
// sparse. CAC is patched in after the marketing stage; the zero value means
// no acquisition cost is attributable for that channel-day (zero
// conversions or zero spend).
type SalesRow struct {
	Date         time.Time `json:"date"`
	Product      string    `json:"product"`
	Region       string    `json:"region"`
	Channel      string    `json:"channel"`
	UnitsSold    int       `json:"units_sold"`
	SellingPrice float64   `json:"selling_price"`
	Revenue      float64   `json:"revenue"`
	CAC          float64   `json:"cac"`
}

// MarketingRow is one (date, channel) funnel record. Funnel ordering
// Impressions >= Clicks >= Conversions >= 0 holds for every row.
type MarketingRow struct {
	Date        time.Time `json:"date"`
	Channel     string    `json:"channel"`
	Revenue     float64   `json:"revenue"`
	Spend       float64   `json:"spend"`
	Impressions int       `json:"impressions"`
	Clicks      int       `json:"clicks"`
	Conversions int       `json:"conversions"`
	CAC         float64   `json:"cac"`
}

// InventoryRow mirrors a product's StockState at day's end.
type InventoryRow struct {
	Date           time.Time `json:"date"`
	Product        string    `json:"product"`
	OpeningStock   int       `json:"opening_stock"`
	Produced       int       `json:"units_produced"`
	AvailableStock int       `json:"available_stock"`
	ActualSold     int       `json:"units_dispatched"`
	ClosingStock   int       `json:"closing_stock"`
	LostDemand     int       `json:"lost_demand"`
	Stockout       bool      `json:"stockout_flag"`
}

// DayResult is the full output of one simulated day. The rows are owned by
// the caller; SimulateDay never retains them.
type DayResult struct {
	Date      time.Time
	Sales     []SalesRow
	Marketing []MarketingRow
	Inventory []InventoryRow
}
