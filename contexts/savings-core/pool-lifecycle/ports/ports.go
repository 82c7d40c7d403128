package ports

import (
	"context"
	"time"

	"esusu/contexts/savings-core/pool-lifecycle/domain/entities"
)

// TransitionResult is the structured outcome of a transition attempt. Policy
// rejections and persistence failures both surface here as Success=false;
// they are values, never raised errors.
type TransitionResult struct {
	PoolID         string
	Success        bool
	PreviousStatus entities.PoolStatus
	NewStatus      entities.PoolStatus
	Message        string
}

type Repository interface {
	GetPool(ctx context.Context, poolID string) (entities.Pool, error)
	// UpdatePoolStatus persists to→from conditionally on the current stored
	// status still being from; ErrStatusChanged when a concurrent transition
	// won the race.
	UpdatePoolStatus(ctx context.Context, poolID string, from entities.PoolStatus, to entities.PoolStatus, updatedAt time.Time) error
	// ListCompletablePools returns active pools whose cycle counter has
	// reached the total.
	ListCompletablePools(ctx context.Context, limit int) ([]entities.Pool, error)
	// ListExpiredFillingPools returns filling pools whose join deadline has
	// passed.
	ListExpiredFillingPools(ctx context.Context, now time.Time, limit int) ([]entities.Pool, error)
}

type Clock interface {
	Now() time.Time
}
