package entities

type Tier string

const (
	TierStarter  Tier = "starter"
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPlus     Tier = "plus"
	TierPremium  Tier = "premium"
	TierElite    Tier = "elite"
)

// tierLadder orders contribution bands from smallest to largest. Eligibility is
// always a prefix of this ladder, so a higher score never loses access to a band
// a lower score had.
var tierLadder = []Tier{TierStarter, TierBasic, TierStandard, TierPlus, TierPremium, TierElite}

const (
	MinTrustScore     = 0
	MaxTrustScore     = 100
	DefaultTrustScore = 50
)

const (
	MissedPenalty    = 5
	AbandonedPenalty = 15

	// RepeatedMissThreshold is compared against the missed-payment count as it
	// stood before the current default is recorded.
	RepeatedMissThreshold = 2
)

type DefaultSeverity string

const (
	SeverityMissed    DefaultSeverity = "missed"
	SeverityRepeated  DefaultSeverity = "repeated"
	SeverityAbandoned DefaultSeverity = "abandoned"
)

func ClampScore(score int) int {
	if score < MinTrustScore {
		return MinTrustScore
	}
	if score > MaxTrustScore {
		return MaxTrustScore
	}
	return score
}

// EligibleTiers maps a trust score to the contribution bands it may join.
// The ladder is strictly nested: every band eligible at a lower score stays
// eligible at any higher score.
func EligibleTiers(score int) []Tier {
	switch {
	case score >= 90:
		return append([]Tier(nil), tierLadder...)
	case score >= 80:
		return append([]Tier(nil), tierLadder[:5]...)
	case score >= 60:
		return append([]Tier(nil), tierLadder[:4]...)
	default:
		return append([]Tier(nil), tierLadder[:3]...)
	}
}

func IsValidTier(value Tier) bool {
	for _, tier := range tierLadder {
		if tier == value {
			return true
		}
	}
	return false
}

// TierForAmount buckets a per-cycle contribution amount into its band.
func TierForAmount(amount float64) Tier {
	switch {
	case amount < 50:
		return TierStarter
	case amount < 100:
		return TierBasic
	case amount < 250:
		return TierStandard
	case amount < 500:
		return TierPlus
	case amount < 1000:
		return TierPremium
	default:
		return TierElite
	}
}

// ClassifySeverity grades a default event. missedBefore is the membership's
// missed-payment count before this default is counted.
func ClassifySeverity(abandoned bool, missedBefore int) DefaultSeverity {
	if abandoned {
		return SeverityAbandoned
	}
	if missedBefore >= RepeatedMissThreshold {
		return SeverityRepeated
	}
	return SeverityMissed
}

// ReferrerPenalty is the score deduction propagated to the referrer of a
// defaulting member.
func ReferrerPenalty(severity DefaultSeverity) int {
	switch severity {
	case SeverityAbandoned:
		return 10
	case SeverityRepeated:
		return 5
	default:
		return 3
	}
}
