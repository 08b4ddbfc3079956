// Package observability provides the shared logger and metrics registry.
package observability

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Metrics carries the counters the pricing and ticket flows report into.
type Metrics struct {
	Calculations   *prometheus.CounterVec
	AutoApplies    prometheus.Counter
	Suggestions    prometheus.Counter
	TicketsOpened  prometheus.Counter
	TicketsClosed  prometheus.Counter
	ReceiptsIssued prometheus.Counter
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vagapark_pricing_calculations_total",
			Help: "Completed price calculations by applied rate type.",
		}, []string{"rate_type"}),
		AutoApplies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vagapark_pricing_auto_applies_total",
			Help: "Calculations where a threshold auto-applied a cheaper rate.",
		}),
		Suggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vagapark_pricing_suggestions_total",
			Help: "Rate suggestions emitted by threshold evaluation.",
		}),
		TicketsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vagapark_tickets_opened_total",
			Help: "Tickets opened at facility entry.",
		}),
		TicketsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vagapark_tickets_closed_total",
			Help: "Tickets closed at checkout.",
		}),
		ReceiptsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vagapark_receipts_issued_total",
			Help: "PDF receipts rendered.",
		}),
	}
	reg.MustRegister(m.Calculations, m.AutoApplies, m.Suggestions, m.TicketsOpened, m.TicketsClosed, m.ReceiptsIssued)
	return m
}

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.Provide(NewRegistry),
	fx.Provide(NewMetrics),
)
