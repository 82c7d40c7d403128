package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	reputationerrors "esusu/contexts/trust-risk/reputation-engine/domain/errors"
	reputationhttp "esusu/contexts/trust-risk/reputation-engine/transport/http"
)

func (s *Server) registerReputationRoutes() {
	s.mux.HandleFunc("GET /api/reputation/v1/scores", s.handleListScores)
	s.mux.HandleFunc("GET /api/reputation/v1/users/{user_id}/score", s.handleGetScore)
	s.mux.HandleFunc("PUT /api/reputation/v1/users/{user_id}/score", s.handleUpdateScore)
	s.mux.HandleFunc("POST /api/reputation/v1/defaults", s.handleRecordDefault)
	s.mux.HandleFunc("GET /api/reputation/v1/users/{user_id}/tiers/{tier}/eligibility", s.handleCheckTier)
}

func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	resp, err := s.reputation.Handler.GetScoreHandler(r.Context(), userID)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reputation.Handler.ListScoresHandler(r.Context())
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	var req reputationhttp.UpdateScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReputationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	userID := r.PathValue("user_id")
	resp, err := s.reputation.Handler.UpdateScoreHandler(r.Context(), userID, req)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordDefault(w http.ResponseWriter, r *http.Request) {
	var req reputationhttp.RecordDefaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReputationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.reputation.Handler.RecordDefaultHandler(r.Context(), req)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckTier(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	tier := r.PathValue("tier")
	resp, err := s.reputation.Handler.CheckTierHandler(r.Context(), userID, tier)
	if err != nil {
		writeReputationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeReputationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reputationerrors.ErrInvalidUserID):
		writeReputationError(w, http.StatusBadRequest, "invalid_user_id", err.Error())
	case errors.Is(err, reputationerrors.ErrUnknownTier):
		writeReputationError(w, http.StatusBadRequest, "unknown_tier", err.Error())
	case errors.Is(err, reputationerrors.ErrMembershipNotFound):
		writeReputationError(w, http.StatusNotFound, "membership_not_found", err.Error())
	default:
		writeReputationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeReputationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, reputationhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
