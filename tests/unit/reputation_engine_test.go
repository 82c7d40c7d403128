package unit

import (
	"context"
	"testing"

	reputationengine "esusu/contexts/trust-risk/reputation-engine"
	"esusu/contexts/trust-risk/reputation-engine/ports"
	httptransport "esusu/contexts/trust-risk/reputation-engine/transport/http"
)

func TestReputationUnscoredUserGetsDefaults(t *testing.T) {
	module := reputationengine.NewInMemoryModule(nil)

	resp, err := module.Handler.GetScoreHandler(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get score failed: %v", err)
	}
	if resp.Data.Score != 50 {
		t.Fatalf("expected default score 50, got %d", resp.Data.Score)
	}
	if len(resp.Data.TierEligibility) != 3 {
		t.Fatalf("expected 3 eligible tiers at score 50, got %v", resp.Data.TierEligibility)
	}
	if resp.Data.TierEligibility[0] != "starter" || resp.Data.TierEligibility[2] != "standard" {
		t.Fatalf("unexpected tier ladder prefix: %v", resp.Data.TierEligibility)
	}
}

func TestReputationTierLadderIsNested(t *testing.T) {
	module := reputationengine.NewInMemoryModule(nil)
	module.Store.SeedTrustScore("low", 59)
	module.Store.SeedTrustScore("mid", 60)
	module.Store.SeedTrustScore("high", 80)
	module.Store.SeedTrustScore("top", 90)

	expected := map[string]int{"low": 3, "mid": 4, "high": 5, "top": 6}
	for userID, count := range expected {
		resp, err := module.Handler.GetScoreHandler(context.Background(), userID)
		if err != nil {
			t.Fatalf("get score for %s failed: %v", userID, err)
		}
		if len(resp.Data.TierEligibility) != count {
			t.Fatalf("expected %d tiers for %s, got %v", count, userID, resp.Data.TierEligibility)
		}
	}
}

func TestReputationUpdateScoreClamps(t *testing.T) {
	module := reputationengine.NewInMemoryModule(nil)

	resp, err := module.Handler.UpdateScoreHandler(context.Background(), "user-1", httptransport.UpdateScoreRequest{Score: 150})
	if err != nil {
		t.Fatalf("update score failed: %v", err)
	}
	if resp.Data.Score != 100 {
		t.Fatalf("expected clamp to 100, got %d", resp.Data.Score)
	}

	resp, err = module.Handler.UpdateScoreHandler(context.Background(), "user-1", httptransport.UpdateScoreRequest{Score: -20})
	if err != nil {
		t.Fatalf("update score failed: %v", err)
	}
	if resp.Data.Score != 0 {
		t.Fatalf("expected clamp to 0, got %d", resp.Data.Score)
	}
}

func TestReputationUpdateScoreSwallowsWriteFailure(t *testing.T) {
	module := reputationengine.NewInMemoryModule(nil)
	module.Store.SeedTrustScore("user-1", 70)
	module.Store.SetFailTrustWrites(true)

	resp, err := module.Handler.UpdateScoreHandler(context.Background(), "user-1", httptransport.UpdateScoreRequest{Score: 65})
	if err != nil {
		t.Fatalf("expected swallowed write failure, got %v", err)
	}
	if resp.Data.Score != 65 {
		t.Fatalf("expected clamped value 65 despite failed write, got %d", resp.Data.Score)
	}

	module.Store.SetFailTrustWrites(false)
	read, err := module.Handler.GetScoreHandler(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get score failed: %v", err)
	}
	if read.Data.Score != 70 {
		t.Fatalf("expected stored score to stay 70, got %d", read.Data.Score)
	}
}

func TestReputationDefaultSeverityEscalates(t *testing.T) {
	module := reputationengine.NewInMemoryModule(nil)
	module.Store.SeedTrustScore("user-1", 60)
	module.Store.SeedMembership("pool-1", "user-1", 0)

	first, err := module.Handler.RecordDefaultHandler(context.Background(), httptransport.RecordDefaultRequest{
		UserID: "user-1",
		PoolID: "pool-1",
	})
	if err != nil {
		t.Fatalf("first default failed: %v", err)
	}
	if first.Data.Severity != "missed" {
		t.Fatalf("expected severity missed, got %s", first.Data.Severity)
	}
	if first.Data.PreviousScore != 60 || first.Data.NewScore != 55 {
		t.Fatalf("expected 60 -> 55, got %d -> %d", first.Data.PreviousScore, first.Data.NewScore)
	}
	if first.Data.MissedPayments != 1 {
		t.Fatalf("expected missed count 1, got %d", first.Data.MissedPayments)
	}

	second, err := module.Handler.RecordDefaultHandler(context.Background(), httptransport.RecordDefaultRequest{
		UserID: "user-1",
		PoolID: "pool-1",
	})
	if err != nil {
		t.Fatalf("second default failed: %v", err)
	}
	// Severity is graded on the pre-increment count; the second miss sees 1.
	if second.Data.Severity != "missed" {
		t.Fatalf("expected severity missed on second default, got %s", second.Data.Severity)
	}

	third, err := module.Handler.RecordDefaultHandler(context.Background(), httptransport.RecordDefaultRequest{
		UserID: "user-1",
		PoolID: "pool-1",
	})
	if err != nil {
		t.Fatalf("third default failed: %v", err)
	}
	if third.Data.Severity != "repeated" {
		t.Fatalf("expected severity repeated on third default, got %s", third.Data.Severity)
	}
	if third.Data.NewScore != 45 {
		t.Fatalf("expected score 45 after three misses, got %d", third.Data.NewScore)
	}
}

func TestReputationAbandonedDefaultPenalizesReferrer(t *testing.T) {
	module := reputationengine.NewInMemoryModule(nil)
	module.Store.SeedTrustScore("user-1", 80)
	module.Store.SeedTrustScore("referrer-1", 90)
	module.Store.SeedMembership("pool-1", "user-1", 0)
	module.Store.SeedReferral(ports.Referral{
		ReferrerID:     "referrer-1",
		ReferredUserID: "user-1",
		Status:         ports.ReferralStatusRewarded,
	})

	resp, err := module.Handler.RecordDefaultHandler(context.Background(), httptransport.RecordDefaultRequest{
		UserID:    "user-1",
		PoolID:    "pool-1",
		Abandoned: true,
	})
	if err != nil {
		t.Fatalf("abandoned default failed: %v", err)
	}
	if resp.Data.Severity != "abandoned" {
		t.Fatalf("expected severity abandoned, got %s", resp.Data.Severity)
	}
	if resp.Data.NewScore != 65 {
		t.Fatalf("expected 80 - 15 = 65, got %d", resp.Data.NewScore)
	}
	if !resp.Data.ReferrerPenalized {
		t.Fatalf("expected referrer to be penalized")
	}

	referrer, err := module.Handler.GetScoreHandler(context.Background(), "referrer-1")
	if err != nil {
		t.Fatalf("get referrer score failed: %v", err)
	}
	if referrer.Data.Score != 80 {
		t.Fatalf("expected referrer 90 - 10 = 80, got %d", referrer.Data.Score)
	}
}

func TestReputationDefaultWithoutReferralSkipsPropagation(t *testing.T) {
	module := reputationengine.NewInMemoryModule(nil)
	module.Store.SeedTrustScore("user-1", 40)
	module.Store.SeedMembership("pool-1", "user-1", 0)

	resp, err := module.Handler.RecordDefaultHandler(context.Background(), httptransport.RecordDefaultRequest{
		UserID: "user-1",
		PoolID: "pool-1",
	})
	if err != nil {
		t.Fatalf("default failed: %v", err)
	}
	if resp.Data.ReferrerPenalized {
		t.Fatalf("expected no referrer penalty without a rewarded referral")
	}
}

func TestReputationCheckTier(t *testing.T) {
	module := reputationengine.NewInMemoryModule(nil)
	module.Store.SeedTrustScore("user-1", 85)

	resp, err := module.Handler.CheckTierHandler(context.Background(), "user-1", "premium")
	if err != nil {
		t.Fatalf("check tier failed: %v", err)
	}
	if !resp.Data.Eligible {
		t.Fatalf("expected score 85 to reach premium")
	}

	resp, err = module.Handler.CheckTierHandler(context.Background(), "user-1", "elite")
	if err != nil {
		t.Fatalf("check tier failed: %v", err)
	}
	if resp.Data.Eligible {
		t.Fatalf("expected score 85 to miss elite")
	}

	if _, err := module.Handler.CheckTierHandler(context.Background(), "user-1", "diamond"); err == nil {
		t.Fatalf("expected unknown tier error")
	}
}

func TestReputationScoreFloorStaysAtZero(t *testing.T) {
	module := reputationengine.NewInMemoryModule(nil)
	module.Store.SeedTrustScore("user-1", 10)
	module.Store.SeedMembership("pool-1", "user-1", 0)

	resp, err := module.Handler.RecordDefaultHandler(context.Background(), httptransport.RecordDefaultRequest{
		UserID:    "user-1",
		PoolID:    "pool-1",
		Abandoned: true,
	})
	if err != nil {
		t.Fatalf("default failed: %v", err)
	}
	if resp.Data.NewScore != 0 {
		t.Fatalf("expected score floored at 0, got %d", resp.Data.NewScore)
	}
}
