package workers

import (
	"context"
	"log/slog"
	"time"

	application "esusu/contexts/savings-core/pool-lifecycle/application"
	"esusu/contexts/savings-core/pool-lifecycle/domain/entities"
	"esusu/contexts/savings-core/pool-lifecycle/ports"
)

// FillTimeoutSweeper expires filling pools whose join deadline passed without
// the pool reaching capacity. timeout is terminal.
type FillTimeoutSweeper struct {
	Service   application.Service
	Pools     ports.Repository
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (j FillTimeoutSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}

	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	expired, err := j.Pools.ListExpiredFillingPools(ctx, now, limit)
	if err != nil {
		logger.Error("fill timeout sweep failed",
			"event", "pool_fill_timeout_failed",
			"module", "savings-core/pool-lifecycle",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	timedOut := 0
	for _, pool := range expired {
		result, err := j.Service.AdvancePool(ctx, pool.PoolID, entities.PoolStatusTimeout)
		if err != nil {
			logger.Error("fill timeout advance failed",
				"event", "pool_fill_timeout_advance_failed",
				"module", "savings-core/pool-lifecycle",
				"layer", "worker",
				"pool_id", pool.PoolID,
				"error", err.Error(),
			)
			continue
		}
		if result.Success {
			timedOut++
		}
	}

	if timedOut > 0 {
		logger.Info("fill timeout sweep completed",
			"event", "pool_fill_timeout_completed",
			"module", "savings-core/pool-lifecycle",
			"layer", "worker",
			"timeout_count", timedOut,
		)
	}
	return nil
}
