package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	membershiperrors "esusu/contexts/savings-core/pool-membership/domain/errors"
	membershiphttp "esusu/contexts/savings-core/pool-membership/transport/http"
)

func (s *Server) registerPoolMembershipRoutes() {
	s.mux.HandleFunc("POST /api/pools/v1/{pool_id}/join", s.handleJoinPool)
	s.mux.HandleFunc("POST /api/pools/v1/{pool_id}/missed-contributions", s.handleMissedContribution)
	s.mux.HandleFunc("GET /api/pools/v1/{pool_id}/members/{user_id}", s.handleGetMembership)
}

func (s *Server) handleJoinPool(w http.ResponseWriter, r *http.Request) {
	var req membershiphttp.JoinPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	poolID := r.PathValue("pool_id")
	resp, err := s.membership.Handler.JoinPoolHandler(r.Context(), poolID, req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMissedContribution(w http.ResponseWriter, r *http.Request) {
	var req membershiphttp.MissedContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	poolID := r.PathValue("pool_id")
	resp, err := s.membership.Handler.MissedContributionHandler(r.Context(), poolID, req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMembership(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("pool_id")
	userID := r.PathValue("user_id")
	resp, err := s.membership.Handler.GetMembershipHandler(r.Context(), poolID, userID)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMembershipDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, membershiperrors.ErrInvalidInput):
		writeMembershipError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, membershiperrors.ErrIdempotencyKeyRequired):
		writeMembershipError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, membershiperrors.ErrIdempotencyKeyConflict):
		writeMembershipError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, membershiperrors.ErrPoolNotFound):
		writeMembershipError(w, http.StatusNotFound, "pool_not_found", err.Error())
	case errors.Is(err, membershiperrors.ErrMembershipNotFound):
		writeMembershipError(w, http.StatusNotFound, "membership_not_found", err.Error())
	case errors.Is(err, membershiperrors.ErrPoolNotJoinable):
		writeMembershipError(w, http.StatusConflict, "pool_not_joinable", err.Error())
	case errors.Is(err, membershiperrors.ErrPoolFull):
		writeMembershipError(w, http.StatusConflict, "pool_full", err.Error())
	case errors.Is(err, membershiperrors.ErrAlreadyMember):
		writeMembershipError(w, http.StatusConflict, "already_member", err.Error())
	case errors.Is(err, membershiperrors.ErrTierNotEligible):
		writeMembershipError(w, http.StatusForbidden, "tier_not_eligible", err.Error())
	default:
		writeMembershipError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMembershipError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, membershiphttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
