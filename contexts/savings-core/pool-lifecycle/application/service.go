package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"esusu/contexts/savings-core/pool-lifecycle/domain/entities"
	domainerrors "esusu/contexts/savings-core/pool-lifecycle/domain/errors"
	"esusu/contexts/savings-core/pool-lifecycle/ports"
)

// Service drives the pool lifecycle state machine. The stored status is the
// de facto lock: every transition re-reads it and the repository write is
// conditional on it, so a stale attempt loses cleanly instead of clobbering.
type Service struct {
	Pools  ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (s Service) GetPoolState(ctx context.Context, poolID string) (entities.Pool, error) {
	poolID = strings.TrimSpace(poolID)
	if poolID == "" {
		return entities.Pool{}, domainerrors.ErrInvalidPoolID
	}
	return s.Pools.GetPool(ctx, poolID)
}

func (s Service) IsJoinable(ctx context.Context, poolID string) (bool, error) {
	pool, err := s.GetPoolState(ctx, poolID)
	if err != nil {
		return false, err
	}
	return pool.IsJoinable(), nil
}

func (s Service) CanLock(ctx context.Context, poolID string) (bool, error) {
	pool, err := s.GetPoolState(ctx, poolID)
	if err != nil {
		return false, err
	}
	return pool.CanLock(), nil
}

func (s Service) CanActivate(ctx context.Context, poolID string) (bool, error) {
	pool, err := s.GetPoolState(ctx, poolID)
	if err != nil {
		return false, err
	}
	return pool.CanActivate(), nil
}

func (s Service) CanComplete(ctx context.Context, poolID string) (bool, error) {
	pool, err := s.GetPoolState(ctx, poolID)
	if err != nil {
		return false, err
	}
	return pool.CanComplete(), nil
}

// AdvancePool attempts one transition. Invalid or self transitions come back
// as Success=false with the status untouched; only a missing pool is an error.
func (s Service) AdvancePool(ctx context.Context, poolID string, target entities.PoolStatus) (ports.TransitionResult, error) {
	pool, err := s.GetPoolState(ctx, poolID)
	if err != nil {
		return ports.TransitionResult{}, err
	}
	return s.transition(ctx, &pool, target), nil
}

// autoAdvancePipeline is the ordered (guard, target) chain AutoAdvance walks.
// Guards are re-evaluated against the already-mutated pool after each applied
// transition, so a single call can compound filling→locked→active→completed.
var autoAdvancePipeline = []struct {
	guard  func(entities.Pool) bool
	target entities.PoolStatus
}{
	{entities.Pool.CanLock, entities.PoolStatusLocked},
	{entities.Pool.CanActivate, entities.PoolStatusActive},
	{entities.Pool.CanComplete, entities.PoolStatusCompleted},
}

func (s Service) AutoAdvance(ctx context.Context, poolID string) ([]ports.TransitionResult, error) {
	pool, err := s.GetPoolState(ctx, poolID)
	if err != nil {
		return nil, err
	}

	results := make([]ports.TransitionResult, 0, len(autoAdvancePipeline))
	for _, step := range autoAdvancePipeline {
		if !step.guard(pool) {
			continue
		}
		result := s.transition(ctx, &pool, step.target)
		results = append(results, result)
		if !result.Success {
			break
		}
	}
	return results, nil
}

func (s Service) transition(ctx context.Context, pool *entities.Pool, target entities.PoolStatus) ports.TransitionResult {
	result := ports.TransitionResult{
		PoolID:         pool.PoolID,
		PreviousStatus: pool.Status,
		NewStatus:      pool.Status,
	}

	if !entities.IsValidStatus(target) {
		result.Message = fmt.Sprintf("unknown target status %q", string(target))
		return result
	}
	if pool.Status == target {
		result.Message = fmt.Sprintf("pool is already %s", string(target))
		return result
	}
	if !entities.TransitionAllowed(pool.Status, target) {
		result.Message = fmt.Sprintf("transition from %s to %s is not allowed", string(pool.Status), string(target))
		return result
	}

	now := s.now()
	if err := s.Pools.UpdatePoolStatus(ctx, pool.PoolID, pool.Status, target, now); err != nil {
		result.Message = err.Error()
		ResolveLogger(s.Logger).Error("pool transition write failed",
			"event", "pool_transition_write_failed",
			"module", "savings-core/pool-lifecycle",
			"layer", "application",
			"pool_id", pool.PoolID,
			"from", string(pool.Status),
			"to", string(target),
			"error", err.Error(),
		)
		return result
	}

	pool.Status = target
	pool.UpdatedAt = now
	result.Success = true
	result.NewStatus = target
	result.Message = fmt.Sprintf("pool advanced from %s to %s", string(result.PreviousStatus), string(target))

	ResolveLogger(s.Logger).Info("pool status advanced",
		"event", "pool_status_advanced",
		"module", "savings-core/pool-lifecycle",
		"layer", "application",
		"pool_id", pool.PoolID,
		"from", string(result.PreviousStatus),
		"to", string(target),
	)
	return result
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
