package application

import (
	"context"
	"log/slog"
	"strings"

	"esusu/contexts/trust-risk/reputation-engine/domain/entities"
	domainerrors "esusu/contexts/trust-risk/reputation-engine/domain/errors"
	"esusu/contexts/trust-risk/reputation-engine/ports"
)

// Service is the trust scoring engine. Scores gate both contribution-tier
// access and payout ordering, so every mutation funnels through UpdateScore
// where the [0,100] clamp is enforced.
type Service struct {
	Profiles  ports.ProfileRepository
	History   ports.MembershipHistoryRepository
	Referrals ports.ReferralRepository
	Logger    *slog.Logger
}

type DefaultResult struct {
	UserID            string
	PoolID            string
	Severity          entities.DefaultSeverity
	PreviousScore     int
	NewScore          int
	ReferrerPenalized bool
	MissedPayments    int
}

func (s Service) GetScore(ctx context.Context, userID string) (ports.ReputationScore, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ports.ReputationScore{}, domainerrors.ErrInvalidUserID
	}

	score, found, err := s.Profiles.GetTrustScore(ctx, userID)
	if err != nil {
		return ports.ReputationScore{}, err
	}
	if !found {
		score = entities.DefaultTrustScore
	}

	cycles, err := s.History.CountSuccessfulCycles(ctx, userID)
	if err != nil {
		return ports.ReputationScore{}, err
	}
	missed, err := s.History.CountMissedPayments(ctx, userID)
	if err != nil {
		return ports.ReputationScore{}, err
	}

	return ports.ReputationScore{
		UserID:           userID,
		Score:            score,
		SuccessfulCycles: cycles,
		MissedPayments:   missed,
		TierEligibility:  entities.EligibleTiers(score),
	}, nil
}

func (s Service) GetAllScores(ctx context.Context) ([]ports.ReputationScore, error) {
	profiles, err := s.Profiles.ListTrustScores(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ports.ReputationScore, 0, len(profiles))
	for _, profile := range profiles {
		cycles, err := s.History.CountSuccessfulCycles(ctx, profile.UserID)
		if err != nil {
			return nil, err
		}
		missed, err := s.History.CountMissedPayments(ctx, profile.UserID)
		if err != nil {
			return nil, err
		}
		items = append(items, ports.ReputationScore{
			UserID:           profile.UserID,
			Score:            profile.Score,
			SuccessfulCycles: cycles,
			MissedPayments:   missed,
			TierEligibility:  entities.EligibleTiers(profile.Score),
		})
	}
	return items, nil
}

// UpdateScore clamps and persists a trust score, returning the clamped value.
// Persistence failures are logged and swallowed: score correction is not a
// safety-critical path and callers must not fail because of it.
func (s Service) UpdateScore(ctx context.Context, userID string, newScore int) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, domainerrors.ErrInvalidUserID
	}

	clamped := entities.ClampScore(newScore)
	if err := s.Profiles.SaveTrustScore(ctx, userID, clamped); err != nil {
		resolveLogger(s.Logger).Error("trust score write failed",
			"event", "reputation_score_write_failed",
			"module", "trust-risk/reputation-engine",
			"layer", "application",
			"user_id", userID,
			"score", clamped,
			"error", err.Error(),
		)
	}
	return clamped, nil
}

// HandleDefault records a missed or abandoned contribution. Order matters:
// deduct the defaulter's score, propagate to the referrer using the
// pre-increment missed count, then increment the membership counter.
func (s Service) HandleDefault(ctx context.Context, userID string, poolID string, abandoned bool) (DefaultResult, error) {
	userID = strings.TrimSpace(userID)
	poolID = strings.TrimSpace(poolID)
	if userID == "" || poolID == "" {
		return DefaultResult{}, domainerrors.ErrInvalidUserID
	}

	missedBefore, err := s.History.GetPoolMissedPayments(ctx, poolID, userID)
	if err != nil {
		return DefaultResult{}, err
	}

	previous, found, err := s.Profiles.GetTrustScore(ctx, userID)
	if err != nil {
		return DefaultResult{}, err
	}
	if !found {
		previous = entities.DefaultTrustScore
	}

	penalty := entities.MissedPenalty
	if abandoned {
		penalty = entities.AbandonedPenalty
	}
	newScore, err := s.UpdateScore(ctx, userID, previous-penalty)
	if err != nil {
		return DefaultResult{}, err
	}

	severity := entities.ClassifySeverity(abandoned, missedBefore)
	penalized, err := s.PenalizeReferrer(ctx, userID, severity)
	if err != nil {
		// Referrer propagation is best-effort; the defaulter's own record
		// still advances.
		resolveLogger(s.Logger).Error("referrer penalty lookup failed",
			"event", "reputation_referrer_penalty_failed",
			"module", "trust-risk/reputation-engine",
			"layer", "application",
			"user_id", userID,
			"severity", string(severity),
			"error", err.Error(),
		)
	}

	if err := s.History.IncrementPoolMissedPayments(ctx, poolID, userID); err != nil {
		return DefaultResult{}, err
	}

	resolveLogger(s.Logger).Info("contribution default recorded",
		"event", "reputation_default_recorded",
		"module", "trust-risk/reputation-engine",
		"layer", "application",
		"user_id", userID,
		"pool_id", poolID,
		"severity", string(severity),
		"previous_score", previous,
		"new_score", newScore,
		"referrer_penalized", penalized,
	)

	return DefaultResult{
		UserID:            userID,
		PoolID:            poolID,
		Severity:          severity,
		PreviousScore:     previous,
		NewScore:          newScore,
		ReferrerPenalized: penalized,
		MissedPayments:    missedBefore + 1,
	}, nil
}

// PenalizeReferrer deducts from the referrer of a defaulting user. Absence of
// a rewarded referral is not an error; the propagation silently skips.
func (s Service) PenalizeReferrer(ctx context.Context, userID string, severity entities.DefaultSeverity) (bool, error) {
	referral, found, err := s.Referrals.GetRewardedReferral(ctx, strings.TrimSpace(userID))
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	current, exists, err := s.Profiles.GetTrustScore(ctx, referral.ReferrerID)
	if err != nil {
		return false, err
	}
	if !exists {
		current = entities.DefaultTrustScore
	}

	penalty := entities.ReferrerPenalty(severity)
	if _, err := s.UpdateScore(ctx, referral.ReferrerID, current-penalty); err != nil {
		return false, err
	}
	return true, nil
}

func (s Service) CanJoinTier(ctx context.Context, userID string, tier entities.Tier) (bool, error) {
	if !entities.IsValidTier(tier) {
		return false, domainerrors.ErrUnknownTier
	}
	score, err := s.GetScore(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, eligible := range score.TierEligibility {
		if eligible == tier {
			return true, nil
		}
	}
	return false, nil
}
