package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sync outcomes reported by the cache synchronizer
const (
	OutcomeFresh       = "fresh"
	OutcomeRefreshed   = "refreshed"
	OutcomeRemoteError = "remote_error"
	OutcomeStoreError  = "store_error"
)

// Recorder receives observations from the catalog core.
type Recorder interface {
	ObserveSync(entity, outcome string, d time.Duration)
	SetCachedRows(entity string, n int)
	ObserveEnrichment(placeholders, enrichedPerformers int, failed bool)
	Handler() http.Handler
}

// Prometheus is a Recorder backed by its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	syncTotal        *prometheus.CounterVec
	syncDuration     *prometheus.HistogramVec
	cachedRows       *prometheus.GaugeVec
	enrichTotal      *prometheus.CounterVec
	placeholders     prometheus.Counter
	performerMatches prometheus.Counter
}

// New returns a prometheus recorder when enabled, a no-op recorder otherwise
func New(enabled bool) Recorder {
	if !enabled {
		return Noop{}
	}
	return NewPrometheus(prometheus.NewRegistry())
}

// NewPrometheus registers the vinilo collectors on reg
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	factory := promauto.With(reg)
	reg.MustRegister(collectors.NewGoCollector())

	return &Prometheus{
		registry: reg,

		syncTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vinilo_sync_total",
			Help: "Cache refresh attempts by entity and outcome",
		}, []string{"entity", "outcome"}),

		syncDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vinilo_sync_duration_seconds",
			Help:    "Duration of cache refresh attempts in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"entity"}),

		cachedRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vinilo_cached_rows",
			Help: "Rows held in the local cache per entity",
		}, []string{"entity"}),

		enrichTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vinilo_enrich_total",
			Help: "Collector detail enrichments by result",
		}, []string{"result"}),

		placeholders: factory.NewCounter(prometheus.CounterOpts{
			Name: "vinilo_enrich_placeholder_albums_total",
			Help: "Owned albums rendered as placeholders because the catalog had no match",
		}),

		performerMatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "vinilo_enrich_performer_matches_total",
			Help: "Favorite performers whose image was filled from the musician catalog",
		}),
	}
}

func (p *Prometheus) ObserveSync(entity, outcome string, d time.Duration) {
	p.syncTotal.WithLabelValues(entity, outcome).Inc()
	if outcome != OutcomeFresh {
		p.syncDuration.WithLabelValues(entity).Observe(d.Seconds())
	}
}

func (p *Prometheus) SetCachedRows(entity string, n int) {
	p.cachedRows.WithLabelValues(entity).Set(float64(n))
}

func (p *Prometheus) ObserveEnrichment(placeholders, enrichedPerformers int, failed bool) {
	if failed {
		p.enrichTotal.WithLabelValues("failure").Inc()
		return
	}
	p.enrichTotal.WithLabelValues("success").Inc()
	p.placeholders.Add(float64(placeholders))
	p.performerMatches.Add(float64(enrichedPerformers))
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Noop discards every observation.
type Noop struct{}

func (Noop) ObserveSync(_, _ string, _ time.Duration) {}
func (Noop) SetCachedRows(_ string, _ int)            {}
func (Noop) ObserveEnrichment(_, _ int, _ bool)       {}
func (Noop) Handler() http.Handler                    { return http.NotFoundHandler() }

// Serve exposes /metrics on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, rec Recorder, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics endpoint failed", "error", err)
		return err
	}
	return nil
}
