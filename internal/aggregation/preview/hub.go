// Package preview recomputes monthly sums on an interval while a client
// keeps a subscription open, replacing client-side polling. A
// subscription lives exactly as long as its context.
package preview

import (
	"context"
	"time"

	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
	"github.com/hydrocore/waterworks/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const DefaultInterval = 5 * time.Second

type Update struct {
	Sums aggdomain.Sums `json:"sums"`
	At   time.Time      `json:"at"`
}

type Params struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
	Agg   aggdomain.Service
}

type Hub struct {
	log   *zap.Logger
	clock clock.Clock
	agg   aggdomain.Service
}

func NewHub(p Params) *Hub {
	return &Hub{
		log:   p.Log.Named("aggregation.preview"),
		clock: p.Clock,
		agg:   p.Agg,
	}
}

// Subscribe emits the current sums immediately, then again on every tick
// until ctx is cancelled. The returned channel is closed on cancellation
// so no stale update can be delivered after the subscriber is gone.
func (h *Hub) Subscribe(ctx context.Context, req aggdomain.SumsRequest, interval time.Duration) (<-chan Update, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	// Validate eagerly so a bad request fails the subscription rather
	// than the stream.
	first, err := h.agg.ComputeDailySums(ctx, req)
	if err != nil {
		return nil, err
	}

	updates := make(chan Update, 1)
	updates <- Update{Sums: first, At: h.clock.Now().UTC()}

	go func() {
		defer close(updates)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := first
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			sums, err := h.agg.ComputeDailySums(ctx, req)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				h.log.Warn("preview recompute failed", zap.Error(err))
				continue
			}

			if sums == last {
				continue
			}
			last = sums

			select {
			case <-ctx.Done():
				return
			case updates <- Update{Sums: sums, At: h.clock.Now().UTC()}:
			}
		}
	}()

	return updates, nil
}
