package httpadapter

import (
	"context"
	"log/slog"

	"esusu/contexts/savings-core/payout-sequencer/application"
	httptransport "esusu/contexts/savings-core/payout-sequencer/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) SlotRangeHandler(score int, completedCycles int, capacity int) httptransport.SlotRangeResponse {
	eligible := h.Service.EligibleSlotRange(score, completedCycles, capacity)
	resp := httptransport.SlotRangeResponse{Status: "success"}
	resp.Data.Score = score
	resp.Data.CompletedCycles = completedCycles
	resp.Data.Capacity = capacity
	resp.Data.MinSlot = eligible.Min
	resp.Data.MaxSlot = eligible.Max
	return resp
}

func (h Handler) ProvisionalSlotHandler(
	ctx context.Context,
	poolID string,
	req httptransport.ProvisionalSlotRequest,
) (httptransport.ProvisionalSlotResponse, error) {
	slot, err := h.Service.AssignProvisionalSlot(ctx, poolID, req.UserID, req.Capacity)
	if err != nil {
		return httptransport.ProvisionalSlotResponse{}, err
	}
	resp := httptransport.ProvisionalSlotResponse{Status: "success"}
	resp.Data.PoolID = poolID
	resp.Data.UserID = req.UserID
	resp.Data.Slot = slot
	return resp, nil
}

func (h Handler) ResequenceHandler(
	ctx context.Context,
	poolID string,
	req httptransport.ResequenceRequest,
) (httptransport.ResequenceResponse, error) {
	assignments, err := h.Service.ResequencePool(ctx, poolID, req.Capacity)
	if err != nil {
		return httptransport.ResequenceResponse{}, err
	}
	resp := httptransport.ResequenceResponse{
		Status: "success",
		Data:   make([]httptransport.SlotAssignmentDTO, 0, len(assignments)),
	}
	for _, assignment := range assignments {
		resp.Data = append(resp.Data, httptransport.SlotAssignmentDTO{
			UserID:          assignment.UserID,
			Score:           assignment.Score,
			CompletedCycles: assignment.CompletedCycles,
			AssignedSlot:    assignment.AssignedSlot,
		})
	}
	return resp, nil
}

func (h Handler) ExplainPositionHandler(ctx context.Context, userID string, capacity int) (httptransport.ExplainPositionResponse, error) {
	explanation, err := h.Service.ExplainPosition(ctx, userID, capacity)
	if err != nil {
		return httptransport.ExplainPositionResponse{}, err
	}
	resp := httptransport.ExplainPositionResponse{Status: "success"}
	resp.Data.UserID = userID
	resp.Data.Capacity = capacity
	resp.Data.Explanation = explanation
	return resp, nil
}
