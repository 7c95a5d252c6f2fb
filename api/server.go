// Package api exposes the simulation tables and KPIs over HTTP. It is a
// read-mostly surface for external consumers (dashboards, agents); the one
// mutating route advances the simulation by a single day.
package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/bizsim/bizsim/analytics"
	"github.com/bizsim/bizsim/sim"
	"github.com/bizsim/bizsim/store"
)

// Server owns the live simulation state behind the HTTP surface. The day
// pipeline has a single logical owner, so all mutation funnels through mu.
type Server struct {
	world   *sim.World
	tables  *store.Tables
	seed    int64
	dataDir string // when set, simulated days are appended to the CSV store

	mu       sync.Mutex
	state    sim.StockState
	lastDate time.Time
	hasDate  bool

	inst *instruments
	reg  *prometheus.Registry
}

// Config seeds a Server from a loaded (possibly empty) history.
type Config struct {
	World  *sim.World
	Tables *store.Tables
	Seed   int64
	// DefaultStart is the first date simulated when the store has no
	// history yet.
	DefaultStart time.Time
	// DataDir persists newly simulated days when non-empty.
	DataDir string
}

// NewServer builds a Server over the given tables. The stock state and the
// continuation date are reconstructed from the store's inventory snapshots.
func NewServer(cfg Config) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		world:   cfg.World,
		tables:  cfg.Tables,
		seed:    cfg.Seed,
		dataDir: cfg.DataDir,
		inst:    newInstruments(reg),
		reg:     reg,
	}
	if last, ok := cfg.Tables.LastDate(); ok {
		s.lastDate = last
		s.hasDate = true
		s.state = cfg.Tables.LastStockState()
	} else {
		s.lastDate = cfg.DefaultStart.AddDate(0, 0, -1)
		s.state = sim.NewStockState(cfg.World)
	}
	return s
}

// Router assembles the chi mux with all routes and middleware.
func (s *Server) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(s.requestLogger)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	mux.Get("/v1/sales", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.tables.Sales(parseFilter(r.URL.Query())))
	})
	mux.Get("/v1/marketing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.tables.Marketing(parseFilter(r.URL.Query())))
	})
	mux.Get("/v1/inventory", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.tables.Inventory(parseFilter(r.URL.Query())))
	})

	mux.Get("/v1/kpi/revenue", s.handleRevenue)
	mux.Get("/v1/kpi/profit", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.ctx().ProfitByProduct(parseFilter(r.URL.Query())))
	})
	mux.Get("/v1/kpi/channels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.ctx().EfficiencyByChannel(parseFilter(r.URL.Query())))
	})
	mux.Get("/v1/kpi/inventory", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.ctx().HealthByProduct(parseFilter(r.URL.Query())))
	})

	mux.Get("/v1/state", s.handleState)
	mux.Post("/v1/simulate/day", s.handleSimulateDay)

	return mux
}

func (s *Server) ctx() analytics.Context {
	return analytics.Context{Tables: s.tables, World: s.world}
}

func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r.URL.Query())
	switch by := r.URL.Query().Get("by"); by {
	case "", "product":
		writeJSON(w, s.ctx().RevenueByProduct(f))
	case "region":
		writeJSON(w, s.ctx().RevenueByRegion(f))
	case "channel":
		writeJSON(w, s.ctx().RevenueByChannel(f))
	default:
		http.Error(w, "by must be product, region, or channel", http.StatusBadRequest)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := map[string]any{"stock": s.state}
	if s.hasDate {
		resp["last_date"] = s.lastDate.Format(sim.DateLayout)
	}
	writeJSON(w, resp)
}

func (s *Server) handleSimulateDay(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := s.lastDate.AddDate(0, 0, 1)
	rng := sim.NewPartitionedRNG(sim.DayKey(sim.NewSimulationKey(s.seed), date))

	res, next, err := sim.SimulateDay(date, s.world, s.state, rng)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.dataDir != "" {
		if err := store.AppendDay(s.dataDir, res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	s.tables.AppendDay(res)
	s.state = next
	s.lastDate = date
	s.hasDate = true

	s.inst.daysSimulated.Inc()
	s.inst.rowsGenerated.WithLabelValues("sales").Add(float64(len(res.Sales)))
	s.inst.rowsGenerated.WithLabelValues("marketing").Add(float64(len(res.Marketing)))
	s.inst.rowsGenerated.WithLabelValues("inventory").Add(float64(len(res.Inventory)))
	for _, row := range res.Sales {
		s.inst.revenueTotal.Add(row.Revenue)
	}
	for _, row := range res.Marketing {
		s.inst.spendTotal.Add(row.Spend)
	}

	logrus.Infof("simulated %s via API: %d sales rows", date.Format(sim.DateLayout), len(res.Sales))
	writeJSON(w, map[string]any{
		"date":           date.Format(sim.DateLayout),
		"sales_rows":     len(res.Sales),
		"marketing_rows": len(res.Marketing),
		"inventory_rows": len(res.Inventory),
	})
}

// requestLogger tags each request with an ID and records it in the request
// counter once served.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.inst.requestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.code)).Inc()
		logrus.Debugf("%s %s -> %d (req %s)", r.Method, r.URL.Path, rec.code, id)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func parseFilter(v url.Values) store.Filter {
	f := store.Filter{
		Product: v.Get("product"),
		Region:  v.Get("region"),
		Channel: v.Get("channel"),
	}
	if t, err := time.Parse(sim.DateLayout, v.Get("from")); err == nil {
		f.From = t
	}
	if t, err := time.Parse(sim.DateLayout, v.Get("to")); err == nil {
		f.To = t
	}
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("encode response: %v", err)
	}
}
