package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_TIMER   = 15
	healthProbeDeadline = 5 * time.Second
)

// Pinger probes an upstream dependency for reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorBackendHealth probes the generation backend on a fixed interval and
// publishes the result through healthy. Probes once immediately so /healthz
// is meaningful before the first tick.
func MonitorBackendHealth(ctx context.Context, backend Pinger, healthy *atomic.Bool) {
	probe(ctx, backend, healthy)

	ticker := time.NewTicker(time.Second * HEALTHCHECK_TIMER)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe(ctx, backend, healthy)
		}
	}
}

func probe(ctx context.Context, backend Pinger, healthy *atomic.Bool) {
	probeCtx, cancel := context.WithTimeout(ctx, healthProbeDeadline)
	defer cancel()

	err := backend.Ping(probeCtx)
	healthy.Store(err == nil)
	if err != nil {
		slog.Warn("[HealthCheck] Generation backend is unhealthy",
			slog.String("error", err.Error()))
	}
}
