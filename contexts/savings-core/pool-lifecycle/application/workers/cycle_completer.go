package workers

import (
	"context"
	"log/slog"

	application "esusu/contexts/savings-core/pool-lifecycle/application"
	"esusu/contexts/savings-core/pool-lifecycle/domain/entities"
	"esusu/contexts/savings-core/pool-lifecycle/ports"
)

// CycleCompleter sweeps active pools whose cycle counter reached the total and
// drives them through the auto-advance pipeline.
type CycleCompleter struct {
	Service   application.Service
	Pools     ports.Repository
	BatchSize int
	Logger    *slog.Logger
}

func (j CycleCompleter) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	due, err := j.Pools.ListCompletablePools(ctx, limit)
	if err != nil {
		logger.Error("cycle completion sweep failed",
			"event", "pool_cycle_completion_failed",
			"module", "savings-core/pool-lifecycle",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	completed := 0
	for _, pool := range due {
		results, err := j.Service.AutoAdvance(ctx, pool.PoolID)
		if err != nil {
			logger.Error("cycle completion advance failed",
				"event", "pool_cycle_completion_advance_failed",
				"module", "savings-core/pool-lifecycle",
				"layer", "worker",
				"pool_id", pool.PoolID,
				"error", err.Error(),
			)
			continue
		}
		for _, result := range results {
			if result.Success && result.NewStatus == entities.PoolStatusCompleted {
				completed++
			}
		}
	}

	if completed > 0 {
		logger.Info("cycle completion sweep completed",
			"event", "pool_cycle_completion_completed",
			"module", "savings-core/pool-lifecycle",
			"layer", "worker",
			"completed_count", completed,
		)
	}
	return nil
}
