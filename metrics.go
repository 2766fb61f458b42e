package framebuffer

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter serves a Buffer's Prometheus metrics over HTTP, grounded on
// autocache's internal/metrics.Exporter — adapted to serve a per-Buffer
// registry (via promhttp.HandlerFor) rather than the process-wide default
// registry, since a library can have more than one Buffer alive at once.
type Exporter struct {
	server *http.Server
}

// NewExporter builds an Exporter bound to addr, serving cfg.Registry at
// /metrics. If cfg.Registry is nil, it serves a fresh registry of its own,
// separate from the one New(cfg) constructs, so no Buffer's metrics
// appear in it.
func NewExporter(addr string, cfg Config) *Exporter {
	cfg = cfg.withDefaults()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	return &Exporter{server: &http.Server{Addr: addr, Handler: mux}}
}

// Start blocks serving metrics until the server errors or is shut down.
func (e *Exporter) Start() error {
	return e.server.ListenAndServe()
}

// Stop gracefully shuts the exporter down.
func (e *Exporter) Stop(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
