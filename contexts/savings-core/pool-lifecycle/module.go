package poollifecycle

import (
	"log/slog"

	httpadapter "esusu/contexts/savings-core/pool-lifecycle/adapters/http"
	"esusu/contexts/savings-core/pool-lifecycle/adapters/memory"
	"esusu/contexts/savings-core/pool-lifecycle/application"
	"esusu/contexts/savings-core/pool-lifecycle/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Pools  ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Pools:  deps.Pools,
		Clock:  deps.Clock,
		Logger: deps.Logger,
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
		Pools:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
