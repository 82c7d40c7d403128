package entities

import "testing"

func TestEligibleTiersAreNestedPrefixes(t *testing.T) {
	cases := []struct {
		score int
		count int
	}{
		{0, 3}, {59, 3}, {60, 4}, {79, 4}, {80, 5}, {89, 5}, {90, 6}, {100, 6},
	}
	var previous []Tier
	for _, tc := range cases {
		tiers := EligibleTiers(tc.score)
		if len(tiers) != tc.count {
			t.Fatalf("score %d: expected %d tiers, got %v", tc.score, tc.count, tiers)
		}
		for i, tier := range previous {
			if tiers[i] != tier {
				t.Fatalf("score %d: ladder no longer a superset, %v vs %v", tc.score, tiers, previous)
			}
		}
		previous = tiers
	}
}

func TestClampScore(t *testing.T) {
	if ClampScore(-5) != 0 || ClampScore(120) != 100 || ClampScore(42) != 42 {
		t.Fatalf("clamp bounds broken")
	}
}

func TestClassifySeverity(t *testing.T) {
	if ClassifySeverity(true, 0) != SeverityAbandoned {
		t.Fatalf("abandoned flag must dominate")
	}
	if ClassifySeverity(false, 0) != SeverityMissed || ClassifySeverity(false, 1) != SeverityMissed {
		t.Fatalf("low miss counts must grade as missed")
	}
	if ClassifySeverity(false, 2) != SeverityRepeated {
		t.Fatalf("two prior misses must grade as repeated")
	}
}

func TestReferrerPenalty(t *testing.T) {
	if ReferrerPenalty(SeverityMissed) != 3 || ReferrerPenalty(SeverityRepeated) != 5 || ReferrerPenalty(SeverityAbandoned) != 10 {
		t.Fatalf("referrer penalty table broken")
	}
}

func TestTierForAmount(t *testing.T) {
	cases := []struct {
		amount float64
		tier   Tier
	}{
		{25, TierStarter}, {50, TierBasic}, {99, TierBasic}, {100, TierStandard},
		{250, TierPlus}, {500, TierPremium}, {1000, TierElite},
	}
	for _, tc := range cases {
		if got := TierForAmount(tc.amount); got != tc.tier {
			t.Fatalf("amount %.0f: expected %s, got %s", tc.amount, tc.tier, got)
		}
	}
}
