// internal/metrics/metrics.go
// Package metrics provides Prometheus metrics for the PnL bot.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "pnl_bot"

// Collector owns the bot's metrics and the registry they live in.
// All methods are safe on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	analyses        *prometheus.CounterVec
	analysisSeconds prometheus.Histogram
	tradeEvents     *prometheus.CounterVec
	priceLookups    *prometheus.CounterVec
	sessions        *prometheus.CounterVec
	commands        *prometheus.CounterVec
}

// New creates a Collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "PnL analyses by outcome.",
		}, []string{"outcome"}),
		analysisSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent building one PnL report.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}),
		tradeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trade_events_total",
			Help:      "Classified trade events by kind.",
		}, []string{"kind"}),
		priceLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_cache_lookups_total",
			Help:      "Price cache lookups by result.",
		}, []string{"result"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_total",
			Help:      "Finished /pnl conversations by final state.",
		}, []string{"state"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Dispatched slash commands by name and result.",
		}, []string{"command", "result"}),
	}

	c.registry.MustRegister(
		c.analyses,
		c.analysisSeconds,
		c.tradeEvents,
		c.priceLookups,
		c.sessions,
		c.commands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveAnalysis records one finished analysis.
func (c *Collector) ObserveAnalysis(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.analyses.WithLabelValues(outcome).Inc()
	c.analysisSeconds.Observe(elapsed.Seconds())
}

// CountTradeEvent records one classified buy or sell.
func (c *Collector) CountTradeEvent(kind string) {
	if c == nil {
		return
	}
	c.tradeEvents.WithLabelValues(kind).Inc()
}

// CountPriceLookup records a price cache hit, miss or error.
func (c *Collector) CountPriceLookup(result string) {
	if c == nil {
		return
	}
	c.priceLookups.WithLabelValues(result).Inc()
}

// CountConversation records the final state of a /pnl conversation.
func (c *Collector) CountConversation(state string) {
	if c == nil {
		return
	}
	c.sessions.WithLabelValues(state).Inc()
}

// CountCommand records a dispatched slash command.
func (c *Collector) CountCommand(command, result string) {
	if c == nil {
		return
	}
	c.commands.WithLabelValues(command, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics server started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
