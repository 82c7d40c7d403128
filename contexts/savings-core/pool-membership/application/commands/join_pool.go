package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "esusu/contexts/savings-core/pool-membership/application"
	domainerrors "esusu/contexts/savings-core/pool-membership/domain/errors"
	"esusu/contexts/savings-core/pool-membership/ports"
)

const (
	poolStatusOpen    = "open"
	poolStatusFilling = "filling"
	poolStatusLocked  = "locked"
)

type JoinPoolCommand struct {
	PoolID         string
	UserID         string
	IdempotencyKey string
}

type JoinPoolUseCase struct {
	Pools          ports.PoolRepository
	Memberships    ports.MembershipRepository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Lifecycle      ports.LifecycleGateway
	Sequencer      ports.SequencerGateway
	Reputation     ports.ReputationGateway
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

type JoinPoolResult struct {
	PoolID     string
	UserID     string
	PayoutSlot int
	PoolStatus string
	PoolLocked bool
	Replayed   bool
}

type joinPoolReplayPayload struct {
	PoolID     string `json:"pool_id"`
	UserID     string `json:"user_id"`
	PayoutSlot int    `json:"payout_slot"`
	PoolStatus string `json:"pool_status"`
	PoolLocked bool   `json:"pool_locked"`
}

func (uc JoinPoolUseCase) Execute(ctx context.Context, cmd JoinPoolCommand) (JoinPoolResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	poolID := strings.TrimSpace(cmd.PoolID)
	userID := strings.TrimSpace(cmd.UserID)
	if poolID == "" || userID == "" {
		return JoinPoolResult{}, domainerrors.ErrInvalidInput
	}
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return JoinPoolResult{}, domainerrors.ErrIdempotencyKeyRequired
	}

	now := uc.Clock.Now().UTC()
	requestHash := hashJoinPoolCommand(poolID, userID)
	if record, found, err := uc.Idempotency.GetRecord(ctx, cmd.IdempotencyKey, now); err != nil {
		return JoinPoolResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			return JoinPoolResult{}, domainerrors.ErrIdempotencyKeyConflict
		}
		var payload joinPoolReplayPayload
		if err := json.Unmarshal(record.ResponsePayload, &payload); err != nil {
			return JoinPoolResult{}, err
		}
		return JoinPoolResult{
			PoolID:     payload.PoolID,
			UserID:     payload.UserID,
			PayoutSlot: payload.PayoutSlot,
			PoolStatus: payload.PoolStatus,
			PoolLocked: payload.PoolLocked,
			Replayed:   true,
		}, nil
	}

	snapshot, err := uc.Pools.GetPoolSnapshot(ctx, poolID)
	if err != nil {
		return JoinPoolResult{}, err
	}
	if snapshot.Status != poolStatusOpen && snapshot.Status != poolStatusFilling {
		return JoinPoolResult{}, domainerrors.ErrPoolNotJoinable
	}
	if snapshot.CurrentMembers >= snapshot.Capacity {
		return JoinPoolResult{}, domainerrors.ErrPoolFull
	}

	eligible, err := uc.Reputation.CanJoinAmount(ctx, userID, snapshot.Amount)
	if err != nil {
		return JoinPoolResult{}, err
	}
	if !eligible {
		return JoinPoolResult{}, domainerrors.ErrTierNotEligible
	}

	if snapshot.Status == poolStatusOpen {
		outcome, err := uc.Lifecycle.Advance(ctx, poolID, poolStatusFilling)
		if err != nil {
			return JoinPoolResult{}, err
		}
		if !outcome.Success && outcome.NewStatus != poolStatusFilling {
			return JoinPoolResult{}, domainerrors.ErrPoolNotJoinable
		}
	}

	if err := uc.Memberships.CreateMembership(ctx, ports.PoolMember{
		PoolID:   poolID,
		UserID:   userID,
		JoinedAt: now,
	}); err != nil {
		return JoinPoolResult{}, err
	}

	slot, err := uc.Sequencer.AssignProvisionalSlot(ctx, poolID, userID, snapshot.Capacity)
	if err != nil {
		return JoinPoolResult{}, err
	}

	if err := uc.Pools.IncrementPoolMembers(ctx, poolID); err != nil {
		return JoinPoolResult{}, err
	}
	memberCount := snapshot.CurrentMembers + 1

	if uc.Outbox != nil {
		eventID, err := uc.IDGenerator.NewID(ctx)
		if err != nil {
			return JoinPoolResult{}, err
		}
		envelope, err := newMembershipEnvelope(eventID, eventTypeMemberJoined, poolID, now, memberJoinedPayload{
			PoolID:         poolID,
			UserID:         userID,
			PayoutSlot:     slot,
			CurrentMembers: memberCount,
			JoinedAt:       now,
		})
		if err != nil {
			return JoinPoolResult{}, err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return JoinPoolResult{}, err
		}
	}

	poolStatus := poolStatusFilling
	poolLocked := false
	outcomes, err := uc.Lifecycle.AutoAdvance(ctx, poolID)
	if err != nil {
		// The membership is already durable. Lifecycle advancement is retried
		// by the sweep workers, so a failure here is logged, not fatal.
		logger.Error("pool auto advance failed after join",
			"event", "membership_auto_advance_failed",
			"module", "savings-core/pool-membership",
			"layer", "application",
			"pool_id", poolID,
			"user_id", userID,
			"error", err.Error(),
		)
	}
	for _, outcome := range outcomes {
		if outcome.Success {
			poolStatus = outcome.NewStatus
		}
		if outcome.Success && outcome.NewStatus == poolStatusLocked {
			poolLocked = true
		}
	}

	if poolLocked {
		slot = uc.resequenceLockedPool(ctx, logger, poolID, userID, snapshot.Capacity, slot, now)
	}

	payload := joinPoolReplayPayload{
		PoolID:     poolID,
		UserID:     userID,
		PayoutSlot: slot,
		PoolStatus: poolStatus,
		PoolLocked: poolLocked,
	}
	serialized, err := json.Marshal(payload)
	if err != nil {
		return JoinPoolResult{}, err
	}
	if err := uc.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             cmd.IdempotencyKey,
		RequestHash:     requestHash,
		ResponsePayload: serialized,
		ExpiresAt:       now.Add(uc.IdempotencyTTL),
	}); err != nil {
		return JoinPoolResult{}, err
	}

	logger.Info("pool member joined",
		"event", "pool_member_joined",
		"module", "savings-core/pool-membership",
		"layer", "application",
		"pool_id", poolID,
		"user_id", userID,
		"payout_slot", slot,
		"pool_status", poolStatus,
	)
	return JoinPoolResult{
		PoolID:     poolID,
		UserID:     userID,
		PayoutSlot: slot,
		PoolStatus: poolStatus,
		PoolLocked: poolLocked,
	}, nil
}

// resequenceLockedPool turns provisional slots into the definitive order once
// the pool locks, and emits the locked event carrying the final assignments.
// Failures are logged; the locked pool can be resequenced again out of band.
func (uc JoinPoolUseCase) resequenceLockedPool(
	ctx context.Context,
	logger *slog.Logger,
	poolID string,
	userID string,
	capacity int,
	fallbackSlot int,
	now time.Time,
) int {
	assignments, err := uc.Sequencer.Resequence(ctx, poolID, capacity)
	if err != nil {
		logger.Error("pool resequence failed after lock",
			"event", "membership_resequence_failed",
			"module", "savings-core/pool-membership",
			"layer", "application",
			"pool_id", poolID,
			"error", err.Error(),
		)
		return fallbackSlot
	}

	slot := fallbackSlot
	payload := poolLockedPayload{
		PoolID:      poolID,
		LockedAt:    now,
		Assignments: make([]lockedAssignmentPayload, 0, len(assignments)),
	}
	for _, assignment := range assignments {
		if assignment.UserID == userID {
			slot = assignment.Slot
		}
		payload.Assignments = append(payload.Assignments, lockedAssignmentPayload{
			UserID:     assignment.UserID,
			PayoutSlot: assignment.Slot,
		})
	}

	if uc.Outbox == nil {
		return slot
	}
	eventID, err := uc.IDGenerator.NewID(ctx)
	if err != nil {
		logger.Error("pool locked event id generation failed",
			"event", "membership_locked_event_failed",
			"module", "savings-core/pool-membership",
			"layer", "application",
			"pool_id", poolID,
			"error", err.Error(),
		)
		return slot
	}
	envelope, err := newMembershipEnvelope(eventID, eventTypePoolLocked, poolID, now, payload)
	if err == nil {
		err = uc.Outbox.AppendOutbox(ctx, envelope)
	}
	if err != nil {
		logger.Error("pool locked event append failed",
			"event", "membership_locked_event_failed",
			"module", "savings-core/pool-membership",
			"layer", "application",
			"pool_id", poolID,
			"error", err.Error(),
		)
	}
	return slot
}

func hashJoinPoolCommand(poolID string, userID string) string {
	raw, _ := json.Marshal(map[string]any{
		"pool_id": poolID,
		"user_id": userID,
	})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
