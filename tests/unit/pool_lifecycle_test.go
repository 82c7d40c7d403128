package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	poollifecycle "esusu/contexts/savings-core/pool-lifecycle"
	"esusu/contexts/savings-core/pool-lifecycle/application/workers"
	"esusu/contexts/savings-core/pool-lifecycle/domain/entities"
	domainerrors "esusu/contexts/savings-core/pool-lifecycle/domain/errors"
	httptransport "esusu/contexts/savings-core/pool-lifecycle/transport/http"
)

func seedLifecyclePool(module poollifecycle.Module, pool entities.Pool) {
	if pool.CreatedAt.IsZero() {
		pool.CreatedAt = time.Now().UTC()
	}
	pool.UpdatedAt = pool.CreatedAt
	module.Store.SeedPool(pool)
}

func TestLifecycleAdvanceFollowsTransitionTable(t *testing.T) {
	module := poollifecycle.NewInMemoryModule(nil)
	seedLifecyclePool(module, entities.Pool{
		PoolID:   "pool-1",
		Status:   entities.PoolStatusOpen,
		Capacity: 5,
	})

	resp, err := module.Handler.AdvancePoolHandler(context.Background(), "pool-1", httptransport.AdvancePoolRequest{Target: "filling"})
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if !resp.Data.Success || resp.Data.NewStatus != "filling" {
		t.Fatalf("expected open -> filling, got %+v", resp.Data)
	}
}

func TestLifecycleAdvanceRejectsIllegalEdge(t *testing.T) {
	module := poollifecycle.NewInMemoryModule(nil)
	seedLifecyclePool(module, entities.Pool{
		PoolID:   "pool-1",
		Status:   entities.PoolStatusOpen,
		Capacity: 5,
	})

	resp, err := module.Handler.AdvancePoolHandler(context.Background(), "pool-1", httptransport.AdvancePoolRequest{Target: "active"})
	if err != nil {
		t.Fatalf("illegal edge should be a result, not an error: %v", err)
	}
	if resp.Data.Success {
		t.Fatalf("expected open -> active to be rejected")
	}
	if resp.Data.NewStatus != "open" {
		t.Fatalf("expected status unchanged, got %s", resp.Data.NewStatus)
	}

	resp, err = module.Handler.AdvancePoolHandler(context.Background(), "pool-1", httptransport.AdvancePoolRequest{Target: "open"})
	if err != nil {
		t.Fatalf("self transition should be a result, not an error: %v", err)
	}
	if resp.Data.Success {
		t.Fatalf("expected self transition to be rejected")
	}

	resp, err = module.Handler.AdvancePoolHandler(context.Background(), "pool-1", httptransport.AdvancePoolRequest{Target: "vaporized"})
	if err != nil {
		t.Fatalf("unknown target should be a result, not an error: %v", err)
	}
	if resp.Data.Success {
		t.Fatalf("expected unknown target to be rejected")
	}
}

func TestLifecycleAdvanceUnknownPool(t *testing.T) {
	module := poollifecycle.NewInMemoryModule(nil)

	_, err := module.Handler.AdvancePoolHandler(context.Background(), "pool-x", httptransport.AdvancePoolRequest{Target: "filling"})
	if !errors.Is(err, domainerrors.ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

func TestLifecycleTerminalStatesHaveNoExit(t *testing.T) {
	module := poollifecycle.NewInMemoryModule(nil)
	seedLifecyclePool(module, entities.Pool{
		PoolID:   "pool-done",
		Status:   entities.PoolStatusCompleted,
		Capacity: 5,
	})
	seedLifecyclePool(module, entities.Pool{
		PoolID:   "pool-dead",
		Status:   entities.PoolStatusTimeout,
		Capacity: 5,
	})

	for _, poolID := range []string{"pool-done", "pool-dead"} {
		resp, err := module.Handler.AdvancePoolHandler(context.Background(), poolID, httptransport.AdvancePoolRequest{Target: "filling"})
		if err != nil {
			t.Fatalf("advance on %s failed: %v", poolID, err)
		}
		if resp.Data.Success {
			t.Fatalf("expected terminal pool %s to reject transitions", poolID)
		}
	}
}

func TestLifecycleFrozenRecoversToActive(t *testing.T) {
	module := poollifecycle.NewInMemoryModule(nil)
	seedLifecyclePool(module, entities.Pool{
		PoolID:   "pool-1",
		Status:   entities.PoolStatusFrozen,
		Capacity: 5,
	})

	resp, err := module.Handler.AdvancePoolHandler(context.Background(), "pool-1", httptransport.AdvancePoolRequest{Target: "active"})
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if !resp.Data.Success || resp.Data.NewStatus != "active" {
		t.Fatalf("expected frozen -> active, got %+v", resp.Data)
	}
}

func TestLifecycleAutoAdvanceCompounds(t *testing.T) {
	module := poollifecycle.NewInMemoryModule(nil)
	start := time.Now().UTC().Add(-time.Hour)
	seedLifecyclePool(module, entities.Pool{
		PoolID:         "pool-1",
		Status:         entities.PoolStatusFilling,
		Capacity:       3,
		CurrentMembers: 3,
		CurrentCycle:   3,
		TotalCycles:    3,
		StartDate:      &start,
	})

	resp, err := module.Handler.AutoAdvanceHandler(context.Background(), "pool-1")
	if err != nil {
		t.Fatalf("auto advance failed: %v", err)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("expected 3 compounding transitions, got %d", len(resp.Data))
	}
	expected := []string{"locked", "active", "completed"}
	for i, step := range resp.Data {
		if !step.Success || step.NewStatus != expected[i] {
			t.Fatalf("step %d: expected success to %s, got %+v", i, expected[i], step)
		}
	}

	state, err := module.Handler.GetPoolStateHandler(context.Background(), "pool-1")
	if err != nil {
		t.Fatalf("get pool state failed: %v", err)
	}
	if state.Data.PoolStatus != "completed" || !state.Data.Terminal {
		t.Fatalf("expected terminal completed pool, got %+v", state.Data)
	}
}

func TestLifecycleAutoAdvanceStopsAtUnmetGuard(t *testing.T) {
	module := poollifecycle.NewInMemoryModule(nil)
	seedLifecyclePool(module, entities.Pool{
		PoolID:         "pool-1",
		Status:         entities.PoolStatusFilling,
		Capacity:       3,
		CurrentMembers: 3,
		CurrentCycle:   0,
		TotalCycles:    3,
	})

	resp, err := module.Handler.AutoAdvanceHandler(context.Background(), "pool-1")
	if err != nil {
		t.Fatalf("auto advance failed: %v", err)
	}
	// No start date, so locked is as far as the pipeline can go.
	if len(resp.Data) != 1 || resp.Data[0].NewStatus != "locked" {
		t.Fatalf("expected a single transition to locked, got %+v", resp.Data)
	}
}

func TestLifecycleFailedWriteLeavesPoolUnchanged(t *testing.T) {
	module := poollifecycle.NewInMemoryModule(nil)
	seedLifecyclePool(module, entities.Pool{
		PoolID:   "pool-1",
		Status:   entities.PoolStatusOpen,
		Capacity: 5,
	})
	module.Store.SetFailStatusWrites(true)

	resp, err := module.Handler.AdvancePoolHandler(context.Background(), "pool-1", httptransport.AdvancePoolRequest{Target: "filling"})
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if resp.Data.Success {
		t.Fatalf("expected transition to fail when the write fails")
	}

	module.Store.SetFailStatusWrites(false)
	state, err := module.Handler.GetPoolStateHandler(context.Background(), "pool-1")
	if err != nil {
		t.Fatalf("get pool state failed: %v", err)
	}
	if state.Data.PoolStatus != "open" {
		t.Fatalf("expected pool to stay open, got %s", state.Data.PoolStatus)
	}
}

func TestLifecycleFillTimeoutSweeper(t *testing.T) {
	module := poollifecycle.NewInMemoryModule(nil)
	deadline := time.Now().UTC().Add(-time.Minute)
	seedLifecyclePool(module, entities.Pool{
		PoolID:         "pool-late",
		Status:         entities.PoolStatusFilling,
		Capacity:       5,
		CurrentMembers: 2,
		JoinDeadline:   &deadline,
	})
	future := time.Now().UTC().Add(time.Hour)
	seedLifecyclePool(module, entities.Pool{
		PoolID:         "pool-ok",
		Status:         entities.PoolStatusFilling,
		Capacity:       5,
		CurrentMembers: 2,
		JoinDeadline:   &future,
	})

	sweeper := workers.FillTimeoutSweeper{
		Service:   module.Service,
		Pools:     module.Store,
		BatchSize: 10,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	late, err := module.Handler.GetPoolStateHandler(context.Background(), "pool-late")
	if err != nil {
		t.Fatalf("get pool state failed: %v", err)
	}
	if late.Data.PoolStatus != "timeout" {
		t.Fatalf("expected expired pool to time out, got %s", late.Data.PoolStatus)
	}

	ok, err := module.Handler.GetPoolStateHandler(context.Background(), "pool-ok")
	if err != nil {
		t.Fatalf("get pool state failed: %v", err)
	}
	if ok.Data.PoolStatus != "filling" {
		t.Fatalf("expected pool before deadline to keep filling, got %s", ok.Data.PoolStatus)
	}
}

func TestLifecycleCycleCompleter(t *testing.T) {
	module := poollifecycle.NewInMemoryModule(nil)
	seedLifecyclePool(module, entities.Pool{
		PoolID:         "pool-1",
		Status:         entities.PoolStatusActive,
		Capacity:       3,
		CurrentMembers: 3,
		CurrentCycle:   3,
		TotalCycles:    3,
	})

	completer := workers.CycleCompleter{
		Service:   module.Service,
		Pools:     module.Store,
		BatchSize: 10,
	}
	if err := completer.RunOnce(context.Background()); err != nil {
		t.Fatalf("completion sweep failed: %v", err)
	}

	state, err := module.Handler.GetPoolStateHandler(context.Background(), "pool-1")
	if err != nil {
		t.Fatalf("get pool state failed: %v", err)
	}
	if state.Data.PoolStatus != "completed" {
		t.Fatalf("expected active pool at final cycle to complete, got %s", state.Data.PoolStatus)
	}
}
