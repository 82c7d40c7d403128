package httpadapter

import (
	"context"
	"log/slog"

	"esusu/contexts/trust-risk/reputation-engine/application"
	"esusu/contexts/trust-risk/reputation-engine/domain/entities"
	httptransport "esusu/contexts/trust-risk/reputation-engine/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GetScoreHandler(ctx context.Context, userID string) (httptransport.ScoreResponse, error) {
	score, err := h.Service.GetScore(ctx, userID)
	if err != nil {
		return httptransport.ScoreResponse{}, err
	}
	resp := httptransport.ScoreResponse{Status: "success"}
	resp.Data.UserID = score.UserID
	resp.Data.Score = score.Score
	resp.Data.SuccessfulCycles = score.SuccessfulCycles
	resp.Data.MissedPayments = score.MissedPayments
	resp.Data.TierEligibility = tierNames(score.TierEligibility)
	return resp, nil
}

func (h Handler) ListScoresHandler(ctx context.Context) (httptransport.ScoreListResponse, error) {
	scores, err := h.Service.GetAllScores(ctx)
	if err != nil {
		return httptransport.ScoreListResponse{}, err
	}
	resp := httptransport.ScoreListResponse{
		Status: "success",
		Data:   make([]httptransport.ScoreEntryDTO, 0, len(scores)),
	}
	for _, score := range scores {
		resp.Data = append(resp.Data, httptransport.ScoreEntryDTO{
			UserID:           score.UserID,
			Score:            score.Score,
			SuccessfulCycles: score.SuccessfulCycles,
			MissedPayments:   score.MissedPayments,
			TierEligibility:  tierNames(score.TierEligibility),
		})
	}
	return resp, nil
}

func (h Handler) UpdateScoreHandler(
	ctx context.Context,
	userID string,
	req httptransport.UpdateScoreRequest,
) (httptransport.UpdateScoreResponse, error) {
	score, err := h.Service.UpdateScore(ctx, userID, req.Score)
	if err != nil {
		return httptransport.UpdateScoreResponse{}, err
	}
	resp := httptransport.UpdateScoreResponse{Status: "success"}
	resp.Data.UserID = userID
	resp.Data.Score = score
	return resp, nil
}

func (h Handler) RecordDefaultHandler(
	ctx context.Context,
	req httptransport.RecordDefaultRequest,
) (httptransport.RecordDefaultResponse, error) {
	result, err := h.Service.HandleDefault(ctx, req.UserID, req.PoolID, req.Abandoned)
	if err != nil {
		return httptransport.RecordDefaultResponse{}, err
	}
	resp := httptransport.RecordDefaultResponse{Status: "success"}
	resp.Data.UserID = result.UserID
	resp.Data.PoolID = result.PoolID
	resp.Data.Severity = string(result.Severity)
	resp.Data.PreviousScore = result.PreviousScore
	resp.Data.NewScore = result.NewScore
	resp.Data.ReferrerPenalized = result.ReferrerPenalized
	resp.Data.MissedPayments = result.MissedPayments
	return resp, nil
}

func (h Handler) CheckTierHandler(ctx context.Context, userID string, tier string) (httptransport.TierCheckResponse, error) {
	eligible, err := h.Service.CanJoinTier(ctx, userID, entities.Tier(tier))
	if err != nil {
		return httptransport.TierCheckResponse{}, err
	}
	resp := httptransport.TierCheckResponse{Status: "success"}
	resp.Data.UserID = userID
	resp.Data.Tier = tier
	resp.Data.Eligible = eligible
	return resp, nil
}

func tierNames(tiers []entities.Tier) []string {
	names := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		names = append(names, string(tier))
	}
	return names
}
