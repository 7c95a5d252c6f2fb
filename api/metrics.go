package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Instrumentation for the serve mode: request traffic plus what the
// simulation has produced so far.
type instruments struct {
	requestsTotal *prometheus.CounterVec
	daysSimulated prometheus.Counter
	rowsGenerated *prometheus.CounterVec
	revenueTotal  prometheus.Counter
	spendTotal    prometheus.Counter
}

func newInstruments(reg prometheus.Registerer) *instruments {
	factory := promauto.With(reg)
	return &instruments{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsim_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
		daysSimulated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bizsim_days_simulated_total",
			Help: "Business days simulated since the server started.",
		}),
		rowsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsim_rows_generated_total",
			Help: "Rows appended to the cumulative tables, by table.",
		}, []string{"table"}),
		revenueTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "bizsim_revenue_total",
			Help: "Total sales revenue generated since the server started.",
		}),
		spendTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "bizsim_ad_spend_total",
			Help: "Total ad spend generated since the server started.",
		}),
	}
}
