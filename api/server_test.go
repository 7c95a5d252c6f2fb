package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bizsim/bizsim/sim"
	"github.com/bizsim/bizsim/store"
)

func testServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	s := NewServer(Config{
		World:        sim.DefaultWorld(),
		Tables:       store.New(),
		Seed:         42,
		DefaultStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return s, s.Router()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func post(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	_, h := testServer(t)
	assert.Equal(t, 200, get(t, h, "/healthz").Code)
	assert.Equal(t, 200, get(t, h, "/readyz").Code)
	assert.Equal(t, 200, get(t, h, "/metrics").Code)
}

func TestSimulateDay_AdvancesAndServes(t *testing.T) {
	srv, h := testServer(t)

	rec := post(t, h, "/v1/simulate/day")
	assert.Equal(t, 200, rec.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2025-01-01", resp["date"])

	// Second day follows the first.
	rec = post(t, h, "/v1/simulate/day")
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2025-01-02", resp["date"])

	// Tables now serve the generated rows.
	var sales []sim.SalesRow
	rec = get(t, h, "/v1/sales?channel=Google")
	assert.Equal(t, 200, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sales))
	for _, r := range sales {
		assert.Equal(t, "Google", r.Channel)
	}

	var inventory []sim.InventoryRow
	rec = get(t, h, "/v1/inventory?from=2025-01-02")
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inventory))
	assert.Len(t, inventory, len(srv.world.Products))

	// Request IDs are attached.
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSimulateDay_ResumesFromStore(t *testing.T) {
	w := sim.DefaultWorld()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := sim.NewSimulator(w, 42, start, start.AddDate(0, 0, 2))
	assert.NoError(t, err)
	assert.NoError(t, s.Run())

	tbl := store.New()
	tbl.AppendDay(&sim.DayResult{Sales: s.Sales, Marketing: s.Marketing, Inventory: s.Inventory})

	srv := NewServer(Config{World: w, Tables: tbl, Seed: 42, DefaultStart: start})
	h := srv.Router()

	var resp map[string]any
	rec := post(t, h, "/v1/simulate/day")
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2025-01-04", resp["date"], "continues one past the persisted history")
}

func TestKPIEndpoints(t *testing.T) {
	_, h := testServer(t)
	post(t, h, "/v1/simulate/day")

	for _, path := range []string{
		"/v1/kpi/revenue",
		"/v1/kpi/revenue?by=region",
		"/v1/kpi/revenue?by=channel",
		"/v1/kpi/profit",
		"/v1/kpi/channels",
		"/v1/kpi/inventory",
		"/v1/state",
	} {
		assert.Equal(t, 200, get(t, h, path).Code, path)
	}

	assert.Equal(t, 400, get(t, h, "/v1/kpi/revenue?by=planet").Code)
}
