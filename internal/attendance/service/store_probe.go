package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/metrics"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
)

// StoreProbe periodically pings the store and records whether it is
// reachable. It runs as a background goroutine and is stopped via its
// context or the Stop method.
type StoreProbe struct {
	pinger   store.Pinger
	health   *Health
	metrics  *metrics.Metrics
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	lastUp   *bool
}

// ProbeConfig holds the parameters for NewStoreProbe.
type ProbeConfig struct {
	// Interval is how often the store is pinged. Defaults to 15s.
	Interval time.Duration

	// Timeout bounds a single ping. Defaults to 5s.
	Timeout time.Duration
}

// NewStoreProbe creates a probe but does not start it.
func NewStoreProbe(p store.Pinger, h *Health, m *metrics.Metrics, cfg ProbeConfig, logger *slog.Logger) *StoreProbe {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &StoreProbe{
		pinger:   p,
		health:   h,
		metrics:  m,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start runs an immediate probe, then repeats on the configured interval
// until ctx is cancelled or Stop is called.
func (p *StoreProbe) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.Probe(ctx)
	go p.loop(ctx)
	p.logger.Info("store probe started", "interval", p.interval)
}

// Stop signals the probe to exit and waits for it to finish. It is a no-op
// if the probe was never started.
func (p *StoreProbe) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

func (p *StoreProbe) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}

// Probe pings the store once and publishes the result. Transitions are logged.
func (p *StoreProbe) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.pinger.Ping(ctx)
	up := err == nil

	if p.lastUp == nil || *p.lastUp != up {
		if up {
			p.logger.Info("store reachable")
		} else {
			p.logger.Error("store unreachable", "err", err)
		}
	}
	p.lastUp = &up

	p.metrics.SetStoreUp(up)
	if p.health != nil {
		p.health.SetStoreUp(up)
	}
	return up
}
