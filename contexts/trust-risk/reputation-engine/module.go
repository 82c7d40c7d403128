package reputationengine

import (
	"log/slog"

	httpadapter "esusu/contexts/trust-risk/reputation-engine/adapters/http"
	"esusu/contexts/trust-risk/reputation-engine/adapters/memory"
	"esusu/contexts/trust-risk/reputation-engine/application"
	"esusu/contexts/trust-risk/reputation-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Profiles  ports.ProfileRepository
	History   ports.MembershipHistoryRepository
	Referrals ports.ReferralRepository
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Profiles:  deps.Profiles,
		History:   deps.History,
		Referrals: deps.Referrals,
		Logger:    deps.Logger,
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
		Profiles:  store,
		History:   store,
		Referrals: store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
