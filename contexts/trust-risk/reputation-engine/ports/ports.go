package ports

import (
	"context"

	"esusu/contexts/trust-risk/reputation-engine/domain/entities"
)

// ReputationScore is the aggregate view served to callers: the stored trust
// score combined with counts computed from membership history.
type ReputationScore struct {
	UserID           string
	Score            int
	SuccessfulCycles int
	MissedPayments   int
	TierEligibility  []entities.Tier
}

type ProfileScore struct {
	UserID string
	Score  int
}

type ProfileRepository interface {
	GetTrustScore(ctx context.Context, userID string) (int, bool, error)
	SaveTrustScore(ctx context.Context, userID string, score int) error
	ListTrustScores(ctx context.Context) ([]ProfileScore, error)
}

// MembershipHistoryRepository reads and mutates the pool_members rows the
// engine derives history from. The per-pool missed counter is the only write.
type MembershipHistoryRepository interface {
	CountSuccessfulCycles(ctx context.Context, userID string) (int, error)
	CountMissedPayments(ctx context.Context, userID string) (int, error)
	GetPoolMissedPayments(ctx context.Context, poolID string, userID string) (int, error)
	IncrementPoolMissedPayments(ctx context.Context, poolID string, userID string) error
}

const ReferralStatusRewarded = "rewarded"

type Referral struct {
	ReferrerID     string
	ReferredUserID string
	Status         string
}

type ReferralRepository interface {
	// GetRewardedReferral returns the referral record for the referred user,
	// false when no referral in the rewarded state exists.
	GetRewardedReferral(ctx context.Context, referredUserID string) (Referral, bool, error)
}
