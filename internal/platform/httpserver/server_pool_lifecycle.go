package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	lifecycleerrors "esusu/contexts/savings-core/pool-lifecycle/domain/errors"
	lifecyclehttp "esusu/contexts/savings-core/pool-lifecycle/transport/http"
)

func (s *Server) registerPoolLifecycleRoutes() {
	s.mux.HandleFunc("GET /api/pools/v1/{pool_id}", s.handleGetPoolState)
	s.mux.HandleFunc("POST /api/pools/v1/{pool_id}/advance", s.handleAdvancePool)
	s.mux.HandleFunc("POST /api/pools/v1/{pool_id}/auto-advance", s.handleAutoAdvance)
}

func (s *Server) handleGetPoolState(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("pool_id")
	resp, err := s.lifecycle.Handler.GetPoolStateHandler(r.Context(), poolID)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdvancePool(w http.ResponseWriter, r *http.Request) {
	var req lifecyclehttp.AdvancePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	poolID := r.PathValue("pool_id")
	resp, err := s.lifecycle.Handler.AdvancePoolHandler(r.Context(), poolID, req)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAutoAdvance(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("pool_id")
	resp, err := s.lifecycle.Handler.AutoAdvanceHandler(r.Context(), poolID)
	if err != nil {
		writeLifecycleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLifecycleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycleerrors.ErrInvalidPoolID):
		writeLifecycleError(w, http.StatusBadRequest, "invalid_pool_id", err.Error())
	case errors.Is(err, lifecycleerrors.ErrPoolNotFound):
		writeLifecycleError(w, http.StatusNotFound, "pool_not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrStatusChanged):
		writeLifecycleError(w, http.StatusConflict, "status_changed", err.Error())
	default:
		writeLifecycleError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLifecycleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, lifecyclehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
