package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bizsim/bizsim/sim"
)

// File names follow the original dataset layout so downstream consumers can
// read the tables directly.
const (
	SalesFile     = "sales.csv"
	MarketingFile = "marketing.csv"
	InventoryFile = "inventory.csv"
)

var (
	salesHeader     = []string{"date", "product", "region", "channel", "units_sold", "revenue", "CAC"}
	marketingHeader = []string{"date", "channel", "spend", "impressions", "clicks", "conversions", "revenue"}
	inventoryHeader = []string{"date", "product", "opening_stock", "units_produced", "units_dispatched", "closing_stock", "lost_demand", "stockout_flag"}
)

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func salesRecord(r sim.SalesRow) []string {
	return []string{
		r.Date.Format(sim.DateLayout), r.Product, r.Region, r.Channel,
		strconv.Itoa(r.UnitsSold), fmtFloat(r.Revenue), fmtFloat(r.CAC),
	}
}

func marketingRecord(r sim.MarketingRow) []string {
	return []string{
		r.Date.Format(sim.DateLayout), r.Channel, fmtFloat(r.Spend),
		strconv.Itoa(r.Impressions), strconv.Itoa(r.Clicks),
		strconv.Itoa(r.Conversions), fmtFloat(r.Revenue),
	}
}

func inventoryRecord(r sim.InventoryRow) []string {
	flag := "No"
	if r.Stockout {
		flag = "Yes"
	}
	return []string{
		r.Date.Format(sim.DateLayout), r.Product,
		strconv.Itoa(r.OpeningStock), strconv.Itoa(r.Produced),
		strconv.Itoa(r.ActualSold), strconv.Itoa(r.ClosingStock),
		strconv.Itoa(r.LostDemand), flag,
	}
}

// Save writes the three tables to dir, replacing any existing files.
func (t *Tables) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := writeCSV(filepath.Join(dir, SalesFile), salesHeader, len(t.sales), func(i int) []string {
		return salesRecord(t.sales[i])
	}); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, MarketingFile), marketingHeader, len(t.marketing), func(i int) []string {
		return marketingRecord(t.marketing[i])
	}); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, InventoryFile), inventoryHeader, len(t.inventory), func(i int) []string {
		return inventoryRecord(t.inventory[i])
	})
}

// AppendDay persists one day's rows to dir, creating the files with headers
// when absent. Used by the next-day continuation mode.
func AppendDay(dir string, res *sim.DayResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := appendCSV(filepath.Join(dir, SalesFile), salesHeader, len(res.Sales), func(i int) []string {
		return salesRecord(res.Sales[i])
	}); err != nil {
		return err
	}
	if err := appendCSV(filepath.Join(dir, MarketingFile), marketingHeader, len(res.Marketing), func(i int) []string {
		return marketingRecord(res.Marketing[i])
	}); err != nil {
		return err
	}
	return appendCSV(filepath.Join(dir, InventoryFile), inventoryHeader, len(res.Inventory), func(i int) []string {
		return inventoryRecord(res.Inventory[i])
	})
}

func writeCSV(path string, header []string, n int, record func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(record(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func appendCSV(path string, header []string, n int, record func(int) []string) error {
	writeHeader := false
	if st, err := os.Stat(path); os.IsNotExist(err) || (err == nil && st.Size() == 0) {
		writeHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		if err := w.Write(record(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Load reads the three tables from dir. Missing files load as empty tables
// so a fresh data directory is not an error.
func Load(dir string) (*Tables, error) {
	t := New()

	err := readCSV(filepath.Join(dir, SalesFile), len(salesHeader), func(rec []string) error {
		row, err := parseSales(rec)
		if err != nil {
			return err
		}
		t.sales = append(t.sales, row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readCSV(filepath.Join(dir, MarketingFile), len(marketingHeader), func(rec []string) error {
		row, err := parseMarketing(rec)
		if err != nil {
			return err
		}
		t.marketing = append(t.marketing, row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readCSV(filepath.Join(dir, InventoryFile), len(inventoryHeader), func(rec []string) error {
		row, err := parseInventory(rec)
		if err != nil {
			return err
		}
		t.inventory = append(t.inventory, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func readCSV(path string, fields int, each func([]string) error) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	// Skip header row.
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("read %s header: %w", path, err)
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := each(rec); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(sim.DateLayout, s)
}

func parseSales(rec []string) (sim.SalesRow, error) {
	date, err := parseDate(rec[0])
	if err != nil {
		return sim.SalesRow{}, err
	}
	units, err := strconv.Atoi(rec[4])
	if err != nil {
		return sim.SalesRow{}, err
	}
	revenue, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return sim.SalesRow{}, err
	}
	cac := 0.0
	if rec[6] != "" {
		if cac, err = strconv.ParseFloat(rec[6], 64); err != nil {
			return sim.SalesRow{}, err
		}
	}
	row := sim.SalesRow{
		Date: date, Product: rec[1], Region: rec[2], Channel: rec[3],
		UnitsSold: units, Revenue: revenue, CAC: cac,
	}
	if units > 0 {
		row.SellingPrice = revenue / float64(units)
	}
	return row, nil
}

func parseMarketing(rec []string) (sim.MarketingRow, error) {
	date, err := parseDate(rec[0])
	if err != nil {
		return sim.MarketingRow{}, err
	}
	spend, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return sim.MarketingRow{}, err
	}
	impressions, err := strconv.Atoi(rec[3])
	if err != nil {
		return sim.MarketingRow{}, err
	}
	clicks, err := strconv.Atoi(rec[4])
	if err != nil {
		return sim.MarketingRow{}, err
	}
	conversions, err := strconv.Atoi(rec[5])
	if err != nil {
		return sim.MarketingRow{}, err
	}
	revenue, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return sim.MarketingRow{}, err
	}
	row := sim.MarketingRow{
		Date: date, Channel: rec[1], Spend: spend,
		Impressions: impressions, Clicks: clicks, Conversions: conversions,
		Revenue: revenue,
	}
	if conversions > 0 {
		// Same currency precision the funnel simulator records.
		row.CAC = math.Round(spend/float64(conversions)*100) / 100
	}
	return row, nil
}

func parseInventory(rec []string) (sim.InventoryRow, error) {
	date, err := parseDate(rec[0])
	if err != nil {
		return sim.InventoryRow{}, err
	}
	ints := make([]int, 5)
	for i, idx := range []int{2, 3, 4, 5, 6} {
		if ints[i], err = strconv.Atoi(rec[idx]); err != nil {
			return sim.InventoryRow{}, err
		}
	}
	return sim.InventoryRow{
		Date:           date,
		Product:        rec[1],
		OpeningStock:   ints[0],
		Produced:       ints[1],
		ActualSold:     ints[2],
		ClosingStock:   ints[3],
		LostDemand:     ints[4],
		AvailableStock: ints[0] + ints[1],
		Stockout:       rec[7] == "Yes",
	}, nil
}
