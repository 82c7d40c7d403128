package bootstrap

import (
	"context"

	sequencerapp "esusu/contexts/savings-core/payout-sequencer/application"
	sequencerports "esusu/contexts/savings-core/payout-sequencer/ports"
	lifecycleapp "esusu/contexts/savings-core/pool-lifecycle/application"
	lifecycleentities "esusu/contexts/savings-core/pool-lifecycle/domain/entities"
	lifecycleports "esusu/contexts/savings-core/pool-lifecycle/ports"
	membershipports "esusu/contexts/savings-core/pool-membership/ports"
	reputationapp "esusu/contexts/trust-risk/reputation-engine/application"
	reputationentities "esusu/contexts/trust-risk/reputation-engine/domain/entities"
)

// Cross-service calls go through narrow gateway structs built here, so each
// service keeps depending only on its own ports.

// TrustReaderGateway feeds reputation scores into the payout sequencer.
type TrustReaderGateway struct {
	Reputation reputationapp.Service
}

func (g TrustReaderGateway) GetMemberTrust(ctx context.Context, userID string) (sequencerports.MemberTrust, error) {
	score, err := g.Reputation.GetScore(ctx, userID)
	if err != nil {
		return sequencerports.MemberTrust{}, err
	}
	return sequencerports.MemberTrust{
		UserID:          score.UserID,
		Score:           score.Score,
		CompletedCycles: score.SuccessfulCycles,
	}, nil
}

// LifecycleGateway exposes pool transitions to the membership orchestrator.
type LifecycleGateway struct {
	Lifecycle lifecycleapp.Service
}

func (g LifecycleGateway) Advance(ctx context.Context, poolID string, target string) (membershipports.TransitionOutcome, error) {
	result, err := g.Lifecycle.AdvancePool(ctx, poolID, lifecycleentities.PoolStatus(target))
	if err != nil {
		return membershipports.TransitionOutcome{}, err
	}
	return toTransitionOutcome(result), nil
}

func (g LifecycleGateway) AutoAdvance(ctx context.Context, poolID string) ([]membershipports.TransitionOutcome, error) {
	results, err := g.Lifecycle.AutoAdvance(ctx, poolID)
	if err != nil {
		return nil, err
	}
	outcomes := make([]membershipports.TransitionOutcome, 0, len(results))
	for _, result := range results {
		outcomes = append(outcomes, toTransitionOutcome(result))
	}
	return outcomes, nil
}

func toTransitionOutcome(result lifecycleports.TransitionResult) membershipports.TransitionOutcome {
	return membershipports.TransitionOutcome{
		PoolID:         result.PoolID,
		Success:        result.Success,
		PreviousStatus: string(result.PreviousStatus),
		NewStatus:      string(result.NewStatus),
		Message:        result.Message,
	}
}

// SequencerGateway exposes slot assignment to the membership orchestrator.
type SequencerGateway struct {
	Sequencer sequencerapp.Service
}

func (g SequencerGateway) AssignProvisionalSlot(ctx context.Context, poolID string, userID string, capacity int) (int, error) {
	return g.Sequencer.AssignProvisionalSlot(ctx, poolID, userID, capacity)
}

func (g SequencerGateway) Resequence(ctx context.Context, poolID string, capacity int) ([]membershipports.SlotOutcome, error) {
	assignments, err := g.Sequencer.ResequencePool(ctx, poolID, capacity)
	if err != nil {
		return nil, err
	}
	outcomes := make([]membershipports.SlotOutcome, 0, len(assignments))
	for _, assignment := range assignments {
		outcomes = append(outcomes, membershipports.SlotOutcome{
			UserID: assignment.UserID,
			Slot:   assignment.AssignedSlot,
		})
	}
	return outcomes, nil
}

// ReputationGateway exposes tier checks and default handling to the
// membership orchestrator.
type ReputationGateway struct {
	Reputation reputationapp.Service
}

func (g ReputationGateway) CanJoinAmount(ctx context.Context, userID string, amount float64) (bool, error) {
	tier := reputationentities.TierForAmount(amount)
	return g.Reputation.CanJoinTier(ctx, userID, tier)
}

func (g ReputationGateway) RecordDefault(ctx context.Context, userID string, poolID string, abandoned bool) (membershipports.DefaultOutcome, error) {
	result, err := g.Reputation.HandleDefault(ctx, userID, poolID, abandoned)
	if err != nil {
		return membershipports.DefaultOutcome{}, err
	}
	return membershipports.DefaultOutcome{
		UserID:            result.UserID,
		PoolID:            result.PoolID,
		Severity:          string(result.Severity),
		PreviousScore:     result.PreviousScore,
		NewScore:          result.NewScore,
		ReferrerPenalized: result.ReferrerPenalized,
		MissedPayments:    result.MissedPayments,
	}, nil
}

var _ sequencerports.TrustReader = TrustReaderGateway{}
var _ membershipports.LifecycleGateway = LifecycleGateway{}
var _ membershipports.SequencerGateway = SequencerGateway{}
var _ membershipports.ReputationGateway = ReputationGateway{}
