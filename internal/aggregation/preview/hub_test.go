package preview

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	aggdomain "github.com/hydrocore/waterworks/internal/aggregation/domain"
	"github.com/hydrocore/waterworks/internal/clock"
)

type aggStub struct {
	mu   sync.Mutex
	sums aggdomain.Sums
	err  error
}

func (a *aggStub) set(sums aggdomain.Sums) {
	a.mu.Lock()
	a.sums = sums
	a.mu.Unlock()
}

func (a *aggStub) ComputeDailySums(ctx context.Context, req aggdomain.SumsRequest) (aggdomain.Sums, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sums, a.err
}

func (a *aggStub) ComputeDailySumsBatch(ctx context.Context, reqs []aggdomain.SumsRequest) ([]aggdomain.BatchItem, error) {
	return nil, nil
}

func (a *aggStub) ValidateDailyCompletion(ctx context.Context, req aggdomain.ValidationRequest) (aggdomain.ValidationResult, error) {
	return aggdomain.ValidationResult{}, nil
}

func newTestHub(agg aggdomain.Service) *Hub {
	return NewHub(Params{
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)),
		Agg:   agg,
	})
}

func TestSubscribeEmitsInitialSnapshot(t *testing.T) {
	agg := &aggStub{sums: aggdomain.Sums{ProductionVolume: 100}}
	hub := newTestHub(agg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := hub.Subscribe(ctx, aggdomain.SumsRequest{}, time.Hour)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	select {
	case update := <-updates:
		if update.Sums.ProductionVolume != 100 {
			t.Fatalf("initial sums = %+v", update.Sums)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial update")
	}
}

func TestSubscribeFailsEagerly(t *testing.T) {
	agg := &aggStub{err: aggdomain.ErrInvalidBranchID}
	hub := newTestHub(agg)

	if _, err := hub.Subscribe(context.Background(), aggdomain.SumsRequest{}, time.Hour); err != aggdomain.ErrInvalidBranchID {
		t.Fatalf("err = %v, want ErrInvalidBranchID", err)
	}
}

func TestSubscribeEmitsOnChange(t *testing.T) {
	agg := &aggStub{sums: aggdomain.Sums{ProductionVolume: 10}}
	hub := newTestHub(agg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := hub.Subscribe(ctx, aggdomain.SumsRequest{}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	<-updates // initial snapshot

	agg.set(aggdomain.Sums{ProductionVolume: 20})

	select {
	case update := <-updates:
		if update.Sums.ProductionVolume != 20 {
			t.Fatalf("update = %+v, want production 20", update.Sums)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no update after change")
	}
}

func TestSubscribeClosesOnCancel(t *testing.T) {
	agg := &aggStub{}
	hub := newTestHub(agg)

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := hub.Subscribe(ctx, aggdomain.SumsRequest{}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	<-updates

	cancel()

	select {
	case _, ok := <-updates:
		if ok {
			// A tick may have raced the cancellation; the close must
			// still follow.
			if _, ok := <-updates; ok {
				t.Fatal("channel not closed after cancel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
