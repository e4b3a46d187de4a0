package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	appReassort "github.com/boutiqa/storefront/internal/application/reassort"
	domevent "github.com/boutiqa/storefront/internal/domain/event"
	"github.com/boutiqa/storefront/internal/infrastructure/id"
	"github.com/boutiqa/storefront/internal/infrastructure/memory"
	"github.com/boutiqa/storefront/internal/infrastructure/reassort/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type signalingPublisher struct {
	mu     sync.Mutex
	count  int
	signal chan struct{}
}

func (p *signalingPublisher) Publish(context.Context, domevent.Event) error {
	p.mu.Lock()
	p.count++
	p.mu.Unlock()
	select {
	case p.signal <- struct{}{}:
	default:
	}
	return nil
}

func TestWorkerRunsDueConfigs(t *testing.T) {
	ctx := context.Background()
	publisher := &signalingPublisher{signal: make(chan struct{}, 1)}
	svc := appReassort.NewService(
		memory.NewReassortRepository(),
		memory.NewReassortHistoryRepository(),
		id.NewUUIDGenerator(),
		publisher,
		nil,
	)

	// An interval well below the scan period: due on the first tick.
	cfg, err := svc.Create(ctx, appReassort.CreateInput{
		AccountID: "acc-1",
		ProductID: "p1",
		Quantity:  50,
		Interval:  time.Millisecond,
	})
	require.NoError(t, err)

	w := worker.New(svc, 10*time.Millisecond, nil)
	w.Start(ctx)
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		w.Stop(stopCtx)
	}()

	select {
	case <-publisher.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never ran the due config")
	}

	history, err := svc.History(ctx, cfg.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	svc := appReassort.NewService(
		memory.NewReassortRepository(),
		memory.NewReassortHistoryRepository(),
		id.NewUUIDGenerator(),
		nil,
		nil,
	)

	w := worker.New(svc, 50*time.Millisecond, nil)
	ctx := context.Background()
	w.Start(ctx)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	w.Stop(stopCtx)
	w.Stop(stopCtx)
}
