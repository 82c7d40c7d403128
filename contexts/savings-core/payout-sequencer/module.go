package payoutsequencer

import (
	"log/slog"

	httpadapter "esusu/contexts/savings-core/payout-sequencer/adapters/http"
	"esusu/contexts/savings-core/payout-sequencer/adapters/memory"
	"esusu/contexts/savings-core/payout-sequencer/application"
	"esusu/contexts/savings-core/payout-sequencer/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Memberships ports.MembershipRepository
	Trust       ports.TrustReader
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Memberships: deps.Memberships,
		Trust:       deps.Trust,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Memberships: store,
		Trust:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
