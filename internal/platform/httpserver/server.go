package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	payoutsequencer "esusu/contexts/savings-core/payout-sequencer"
	poollifecycle "esusu/contexts/savings-core/pool-lifecycle"
	poolmembership "esusu/contexts/savings-core/pool-membership"
	reputationengine "esusu/contexts/trust-risk/reputation-engine"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	reputation reputationengine.Module
	lifecycle  poollifecycle.Module
	sequencer  payoutsequencer.Module
	membership poolmembership.Module
}

func New(
	reputation reputationengine.Module,
	lifecycle poollifecycle.Module,
	sequencer payoutsequencer.Module,
	membership poolmembership.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		reputation: reputation,
		lifecycle:  lifecycle,
		sequencer:  sequencer,
		membership: membership,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.registerReputationRoutes()
	s.registerPoolLifecycleRoutes()
	s.registerPayoutSequencerRoutes()
	s.registerPoolMembershipRoutes()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
