// Package metrics exposes playback and DRM counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts normalized events, DRM transactions and readiness retries.
// It satisfies the observer contracts of the player and drm packages.
type Collector struct {
	events       *prometheus.CounterVec
	transactions *prometheus.CounterVec
	retries      prometheus.Counter
}

// New registers a Collector's counters with reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tvplay_playback_events_total",
			Help: "Total number of normalized playback events published to the host",
		}, []string{"event"}),
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tvplay_drm_transactions_total",
			Help: "Total number of settled DRM transactions by mode and outcome",
		}, []string{"mode", "outcome"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "tvplay_ready_retries_total",
			Help: "Total number of readiness polls that rescheduled themselves",
		}),
	}
}

func (c *Collector) PlaybackEvent(kind string) {
	c.events.WithLabelValues(kind).Inc()
}

func (c *Collector) DRMTransaction(mode, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	c.transactions.WithLabelValues(mode, outcome).Inc()
}

func (c *Collector) ReadyRetry() {
	c.retries.Inc()
}

// Serve exposes g on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
