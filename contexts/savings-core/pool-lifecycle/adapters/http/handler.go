package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"esusu/contexts/savings-core/pool-lifecycle/application"
	"esusu/contexts/savings-core/pool-lifecycle/domain/entities"
	"esusu/contexts/savings-core/pool-lifecycle/ports"
	httptransport "esusu/contexts/savings-core/pool-lifecycle/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) AdvancePoolHandler(
	ctx context.Context,
	poolID string,
	req httptransport.AdvancePoolRequest,
) (httptransport.AdvancePoolResponse, error) {
	result, err := h.Service.AdvancePool(ctx, poolID, entities.PoolStatus(req.Target))
	if err != nil {
		return httptransport.AdvancePoolResponse{}, err
	}
	return httptransport.AdvancePoolResponse{
		Status: "success",
		Data:   toTransitionDTO(result),
	}, nil
}

func (h Handler) AutoAdvanceHandler(ctx context.Context, poolID string) (httptransport.AutoAdvanceResponse, error) {
	results, err := h.Service.AutoAdvance(ctx, poolID)
	if err != nil {
		return httptransport.AutoAdvanceResponse{}, err
	}
	resp := httptransport.AutoAdvanceResponse{
		Status: "success",
		Data:   make([]httptransport.TransitionResultDTO, 0, len(results)),
	}
	for _, result := range results {
		resp.Data = append(resp.Data, toTransitionDTO(result))
	}
	return resp, nil
}

func (h Handler) GetPoolStateHandler(ctx context.Context, poolID string) (httptransport.PoolStateResponse, error) {
	pool, err := h.Service.GetPoolState(ctx, poolID)
	if err != nil {
		return httptransport.PoolStateResponse{}, err
	}
	resp := httptransport.PoolStateResponse{Status: "success"}
	resp.Data.PoolID = pool.PoolID
	resp.Data.PoolStatus = string(pool.Status)
	resp.Data.Capacity = pool.Capacity
	resp.Data.CurrentMembers = pool.CurrentMembers
	resp.Data.CurrentCycle = pool.CurrentCycle
	resp.Data.TotalCycles = pool.TotalCycles
	resp.Data.Amount = pool.Amount
	resp.Data.Joinable = pool.IsJoinable()
	resp.Data.Terminal = pool.IsTerminal()
	if pool.StartDate != nil {
		resp.Data.StartDate = pool.StartDate.UTC().Format(time.RFC3339)
	}
	if pool.JoinDeadline != nil {
		resp.Data.JoinDeadline = pool.JoinDeadline.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

func toTransitionDTO(result ports.TransitionResult) httptransport.TransitionResultDTO {
	return httptransport.TransitionResultDTO{
		PoolID:         result.PoolID,
		Success:        result.Success,
		PreviousStatus: string(result.PreviousStatus),
		NewStatus:      string(result.NewStatus),
		Message:        result.Message,
	}
}
