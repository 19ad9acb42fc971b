// Package metrics exposes daemon activity as Prometheus metrics.
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

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	LayoutPasses   *prometheus.CounterVec
	LayoutDuration prometheus.Histogram
	RenderFailures prometheus.Counter
	Tiles          prometheus.Gauge
	Workspaces     prometheus.Gauge
	Requests       *prometheus.CounterVec
	ConfigReloads  *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		LayoutPasses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twm_layout_passes_total",
				Help: "Layout passes that recomputed tile geometry, by layout name",
			},
			[]string{"layout"},
		),
		LayoutDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "twm_layout_duration_seconds",
				Help:    "Time spent computing a layout pass",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
		),
		RenderFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "twm_render_failures_total",
				Help: "Tiles whose window could not be positioned",
			},
		),
		Tiles: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "twm_tiles",
				Help: "Tiles in the focused workspace",
			},
		),
		Workspaces: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "twm_workspaces",
				Help: "Workspaces managed by the daemon",
			},
		),
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twm_ipc_requests_total",
				Help: "IPC requests by method and status",
			},
			[]string{"method", "status"},
		),
		ConfigReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twm_config_reloads_total",
				Help: "Config reloads by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) ObserveLayout(layout string, d time.Duration) {
	if m == nil {
		return
	}
	m.LayoutPasses.WithLabelValues(layout).Inc()
	m.LayoutDuration.Observe(d.Seconds())
}

func (m *Metrics) AddRenderFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RenderFailures.Add(float64(n))
}

func (m *Metrics) SetCounts(tiles, workspaces int) {
	if m == nil {
		return
	}
	m.Tiles.Set(float64(tiles))
	m.Workspaces.Set(float64(workspaces))
}

func (m *Metrics) RecordRequest(method, status string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, status).Inc()
}

func (m *Metrics) RecordReload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ConfigReloads.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
