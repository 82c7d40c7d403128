package httpadapter

import (
	"context"
	"log/slog"

	"esusu/contexts/savings-core/pool-membership/application/commands"
	"esusu/contexts/savings-core/pool-membership/application/queries"
	httptransport "esusu/contexts/savings-core/pool-membership/transport/http"
)

type Handler struct {
	JoinPool      commands.JoinPoolUseCase
	RecordMissed  commands.RecordMissedContributionUseCase
	GetMembership queries.GetMembershipUseCase
	Logger        *slog.Logger
}

func (h Handler) JoinPoolHandler(
	ctx context.Context,
	poolID string,
	req httptransport.JoinPoolRequest,
) (httptransport.JoinPoolResponse, error) {
	result, err := h.JoinPool.Execute(ctx, commands.JoinPoolCommand{
		PoolID:         poolID,
		UserID:         req.UserID,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return httptransport.JoinPoolResponse{}, err
	}
	resp := httptransport.JoinPoolResponse{Status: "success"}
	resp.Data.PoolID = result.PoolID
	resp.Data.UserID = result.UserID
	resp.Data.PayoutSlot = result.PayoutSlot
	resp.Data.PoolStatus = result.PoolStatus
	resp.Data.PoolLocked = result.PoolLocked
	resp.Data.Replayed = result.Replayed
	return resp, nil
}

func (h Handler) MissedContributionHandler(
	ctx context.Context,
	poolID string,
	req httptransport.MissedContributionRequest,
) (httptransport.MissedContributionResponse, error) {
	result, err := h.RecordMissed.Execute(ctx, commands.RecordMissedContributionCommand{
		PoolID:    poolID,
		UserID:    req.UserID,
		Abandoned: req.Abandoned,
	})
	if err != nil {
		return httptransport.MissedContributionResponse{}, err
	}
	resp := httptransport.MissedContributionResponse{Status: "success"}
	resp.Data.PoolID = result.PoolID
	resp.Data.UserID = result.UserID
	resp.Data.Severity = result.Severity
	resp.Data.PreviousScore = result.PreviousScore
	resp.Data.NewScore = result.NewScore
	resp.Data.ReferrerPenalized = result.ReferrerPenalized
	resp.Data.MissedPayments = result.MissedPayments
	return resp, nil
}

func (h Handler) GetMembershipHandler(ctx context.Context, poolID string, userID string) (httptransport.MembershipResponse, error) {
	member, err := h.GetMembership.Execute(ctx, poolID, userID)
	if err != nil {
		return httptransport.MembershipResponse{}, err
	}
	resp := httptransport.MembershipResponse{Status: "success"}
	resp.Data.PoolID = member.PoolID
	resp.Data.UserID = member.UserID
	resp.Data.JoinedAt = member.JoinedAt
	return resp, nil
}
