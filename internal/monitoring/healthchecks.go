package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	HEALTHCHECK_INTERVAL = 15 * time.Second
	HEALTHCHECK_TIMEOUT  = 3 * time.Second
)

type CheckFunc func(ctx context.Context) error

// MonitorDependency runs check every interval and stores the outcome in
// healthy until ctx is done. The first check runs immediately.
func MonitorDependency(ctx context.Context, clock clockwork.Clock, name string, interval time.Duration, check CheckFunc, healthy *atomic.Bool) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	probe(ctx, name, check, healthy)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			probe(ctx, name, check, healthy)
		}
	}
}

func probe(ctx context.Context, name string, check CheckFunc, healthy *atomic.Bool) {
	checkCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	err := check(checkCtx)
	was := healthy.Swap(err == nil)
	switch {
	case err != nil && was:
		slog.Warn("[HealthCheck] Dependency is unhealthy",
			slog.String("dependency", name),
			slog.String("error", err.Error()))
	case err == nil && !was:
		slog.Info("[HealthCheck] Dependency recovered", slog.String("dependency", name))
	}
}
