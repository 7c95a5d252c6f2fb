package cmd

import (
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bizsim/bizsim/api"
	sim "github.com/bizsim/bizsim/sim"
	"github.com/bizsim/bizsim/store"
)

var (
	// CLI flags shared across subcommands
	seed      int64  // Seed for all stochastic draws
	logLevel  string // Log verbosity level
	dataDir   string // Directory holding the CSV tables
	worldFile string // Optional YAML world file; empty means the built-in catalog

	// History run flags
	startDate string // First simulated day (inclusive)
	endDate   string // Last simulated day (inclusive)

	// Serve flags
	listenAddr string // HTTP listen address
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "bizsim",
	Short: "Deterministic day-by-day simulator for a small consumer business",
}

// setupLogging applies the --log flag before any subcommand work starts.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadWorld resolves the world configuration: the YAML file when given,
// otherwise the built-in catalog.
func loadWorld() *sim.World {
	if worldFile == "" {
		return sim.DefaultWorld()
	}
	w, err := LoadWorld(worldFile)
	if err != nil {
		logrus.Fatalf("unable to read world file %s: %v", worldFile, err)
	}
	return w
}

func parseDay(flag, value string) time.Time {
	d, err := time.Parse(sim.DateLayout, value)
	if err != nil {
		logrus.Fatalf("Invalid --%s date %q: must be YYYY-MM-DD", flag, value)
	}
	return d
}

// runCmd generates a full history over a date range and writes the three
// CSV tables.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a simulated history over a date range",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		world := loadWorld()
		start := parseDay("start", startDate)
		end := parseDay("end", endDate)

		runID := uuid.NewString()
		logrus.Infof("Starting history run %s: %s..%s, seed=%d, %d products",
			runID, startDate, endDate, seed, len(world.Products))

		startTime := time.Now()

		s, err := sim.NewSimulator(world, seed, start, end)
		if err != nil {
			logrus.Fatalf("invalid simulation setup: %v", err)
		}
		if err := s.Run(); err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}

		tables := store.New()
		tables.AppendRows(s.Sales, s.Marketing, s.Inventory)
		if err := tables.Save(dataDir); err != nil {
			logrus.Fatalf("unable to write tables to %s: %v", dataDir, err)
		}

		s.Metrics.Print()
		logrus.Infof("History run %s complete in %v; tables written to %s",
			runID, time.Since(startTime).Round(time.Millisecond), dataDir)
	},
}

// dayCmd simulates exactly one more day on top of the stored history and
// appends it to the CSV tables.
var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Simulate the next day and append it to the stored tables",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		world := loadWorld()

		tables, err := store.Load(dataDir)
		if err != nil {
			logrus.Fatalf("unable to load tables from %s: %v", dataDir, err)
		}

		var date time.Time
		var state sim.StockState
		if last, ok := tables.LastDate(); ok {
			date = last.AddDate(0, 0, 1)
			state = tables.LastStockState()
		} else {
			logrus.Warnf("no history in %s, starting fresh at %s", dataDir, startDate)
			date = parseDay("start", startDate)
			state = sim.NewStockState(world)
		}

		key := sim.DayKey(sim.NewSimulationKey(seed), date)
		res, _, err := sim.SimulateDay(date, world, state, sim.NewPartitionedRNG(key))
		if err != nil {
			logrus.Fatalf("day simulation failed: %v", err)
		}

		if err := store.AppendDay(dataDir, res); err != nil {
			logrus.Fatalf("unable to append day to %s: %v", dataDir, err)
		}

		logrus.Infof("Simulated %s: %d sales rows, %d marketing rows, %d inventory rows",
			date.Format(sim.DateLayout), len(res.Sales), len(res.Marketing), len(res.Inventory))
	},
}

// serveCmd exposes the stored tables and the day simulation over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tables, KPIs and day simulation over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		world := loadWorld()

		tables, err := store.Load(dataDir)
		if err != nil {
			logrus.Fatalf("unable to load tables from %s: %v", dataDir, err)
		}

		srv := api.NewServer(api.Config{
			World:        world,
			Tables:       tables,
			Seed:         seed,
			DefaultStart: parseDay("start", startDate),
			DataDir:      dataDir,
		})

		httpSrv := &http.Server{
			Addr:              listenAddr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		logrus.Infof("Listening on %s, data dir %s", listenAddr, dataDir)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server stopped: %v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for all stochastic draws")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "Directory holding the CSV tables")
	rootCmd.PersistentFlags().StringVar(&worldFile, "world", "", "YAML world file (default: built-in catalog)")

	runCmd.Flags().StringVar(&startDate, "start", "2025-01-01", "First simulated day (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&endDate, "end", "2025-03-31", "Last simulated day (YYYY-MM-DD)")

	dayCmd.Flags().StringVar(&startDate, "start", "2025-01-01", "First day when no history exists yet (YYYY-MM-DD)")

	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&startDate, "start", "2025-01-01", "First day when no history exists yet (YYYY-MM-DD)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(serveCmd)
}
