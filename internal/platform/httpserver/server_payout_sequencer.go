package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	sequencererrors "esusu/contexts/savings-core/payout-sequencer/domain/errors"
	sequencerhttp "esusu/contexts/savings-core/payout-sequencer/transport/http"
)

func (s *Server) registerPayoutSequencerRoutes() {
	s.mux.HandleFunc("GET /api/sequencer/v1/slot-range", s.handleSlotRange)
	s.mux.HandleFunc("GET /api/sequencer/v1/users/{user_id}/position", s.handleExplainPosition)
	s.mux.HandleFunc("POST /api/pools/v1/{pool_id}/slots/provisional", s.handleProvisionalSlot)
	s.mux.HandleFunc("POST /api/pools/v1/{pool_id}/slots/resequence", s.handleResequence)
}

func (s *Server) handleSlotRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	score, err := strconv.Atoi(query.Get("score"))
	if err != nil {
		writeSequencerError(w, http.StatusBadRequest, "invalid_score", "score must be an integer")
		return
	}
	cycles, err := strconv.Atoi(query.Get("completed_cycles"))
	if err != nil {
		writeSequencerError(w, http.StatusBadRequest, "invalid_cycles", "completed_cycles must be an integer")
		return
	}
	capacity := 0
	if raw := query.Get("capacity"); raw != "" {
		capacity, err = strconv.Atoi(raw)
		if err != nil {
			writeSequencerError(w, http.StatusBadRequest, "invalid_capacity", "capacity must be an integer")
			return
		}
	}

	resp := s.sequencer.Handler.SlotRangeHandler(score, cycles, capacity)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExplainPosition(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	capacity := 0
	if raw := r.URL.Query().Get("capacity"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeSequencerError(w, http.StatusBadRequest, "invalid_capacity", "capacity must be an integer")
			return
		}
		capacity = value
	}

	resp, err := s.sequencer.Handler.ExplainPositionHandler(r.Context(), userID, capacity)
	if err != nil {
		writeSequencerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProvisionalSlot(w http.ResponseWriter, r *http.Request) {
	var req sequencerhttp.ProvisionalSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSequencerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	poolID := r.PathValue("pool_id")
	resp, err := s.sequencer.Handler.ProvisionalSlotHandler(r.Context(), poolID, req)
	if err != nil {
		writeSequencerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResequence(w http.ResponseWriter, r *http.Request) {
	var req sequencerhttp.ResequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSequencerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	poolID := r.PathValue("pool_id")
	resp, err := s.sequencer.Handler.ResequenceHandler(r.Context(), poolID, req)
	if err != nil {
		writeSequencerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSequencerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sequencererrors.ErrInvalidInput):
		writeSequencerError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, sequencererrors.ErrSlotConflict):
		writeSequencerError(w, http.StatusConflict, "slot_conflict", err.Error())
	case errors.Is(err, sequencererrors.ErrSlotExhausted):
		writeSequencerError(w, http.StatusConflict, "slot_exhausted", err.Error())
	default:
		writeSequencerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSequencerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, sequencerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
