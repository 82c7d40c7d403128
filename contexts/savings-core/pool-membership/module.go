package poolmembership

import (
	"log/slog"
	"time"

	httpadapter "esusu/contexts/savings-core/pool-membership/adapters/http"
	"esusu/contexts/savings-core/pool-membership/adapters/memory"
	"esusu/contexts/savings-core/pool-membership/application/commands"
	"esusu/contexts/savings-core/pool-membership/application/queries"
	"esusu/contexts/savings-core/pool-membership/ports"
)

type Module struct {
	Handler      httpadapter.Handler
	JoinPool     commands.JoinPoolUseCase
	RecordMissed commands.RecordMissedContributionUseCase
	Store        *memory.Store
}

type Dependencies struct {
	Pools          ports.PoolRepository
	Memberships    ports.MembershipRepository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Lifecycle      ports.LifecycleGateway
	Sequencer      ports.SequencerGateway
	Reputation     ports.ReputationGateway
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	joinPool := commands.JoinPoolUseCase{
		Pools:          deps.Pools,
		Memberships:    deps.Memberships,
		Idempotency:    deps.Idempotency,
		Outbox:         deps.Outbox,
		Lifecycle:      deps.Lifecycle,
		Sequencer:      deps.Sequencer,
		Reputation:     deps.Reputation,
		Clock:          deps.Clock,
		IDGenerator:    deps.IDGenerator,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	recordMissed := commands.RecordMissedContributionUseCase{
		Memberships: deps.Memberships,
		Reputation:  deps.Reputation,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	getMembership := queries.GetMembershipUseCase{
		Memberships: deps.Memberships,
		Logger:      deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			JoinPool:      joinPool,
			RecordMissed:  recordMissed,
			GetMembership: getMembership,
			Logger:        deps.Logger,
		},
		JoinPool:     joinPool,
		RecordMissed: recordMissed,
	}
}

func NewInMemoryModule(
	lifecycle ports.LifecycleGateway,
	sequencer ports.SequencerGateway,
	reputation ports.ReputationGateway,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Pools:          store,
		Memberships:    store,
		Idempotency:    store,
		Outbox:         store,
		Lifecycle:      lifecycle,
		Sequencer:      sequencer,
		Reputation:     reputation,
		Clock:          store,
		IDGenerator:    store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
