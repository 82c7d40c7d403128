package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"esusu/contexts/savings-core/payout-sequencer/domain/entities"
	domainerrors "esusu/contexts/savings-core/payout-sequencer/domain/errors"
	"esusu/contexts/savings-core/payout-sequencer/ports"
)

// Service assigns payout slots. Provisional slots are advisory hints handed
// out at join time; the definitive ordering is produced by ResequencePool
// exactly once, when the pool locks.
type Service struct {
	Memberships ports.MembershipRepository
	Trust       ports.TrustReader
	Logger      *slog.Logger
}

// provisionalAttempts bounds the retry loop on slot-uniqueness conflicts.
const provisionalAttempts = 3

func (s Service) EligibleSlotRange(score int, completedCycles int, capacity int) entities.SlotRange {
	return entities.EligibleSlotRange(score, completedCycles, capacity)
}

// AssignProvisionalSlot hands the joining member the first free slot at or
// above their eligibility floor, falling back to the first free slot anywhere.
// A uniqueness conflict from a racing join re-reads occupancy and retries.
func (s Service) AssignProvisionalSlot(ctx context.Context, poolID string, userID string, capacity int) (int, error) {
	poolID = strings.TrimSpace(poolID)
	userID = strings.TrimSpace(userID)
	if poolID == "" || userID == "" || capacity <= 0 {
		return 0, domainerrors.ErrInvalidInput
	}

	trust, err := s.Trust.GetMemberTrust(ctx, userID)
	if err != nil {
		return 0, err
	}
	eligible := entities.EligibleSlotRange(trust.Score, trust.CompletedCycles, capacity)

	for attempt := 0; attempt < provisionalAttempts; attempt++ {
		occupied, err := s.Memberships.ListOccupiedSlots(ctx, poolID)
		if err != nil {
			return 0, err
		}
		taken := make(map[int]bool, len(occupied))
		for _, slot := range occupied {
			taken[slot] = true
		}

		slot := firstFreeSlot(taken, eligible.Min, capacity)
		if slot == 0 {
			slot = firstFreeSlot(taken, 1, capacity)
		}
		if slot == 0 {
			return 0, domainerrors.ErrSlotExhausted
		}

		err = s.Memberships.SavePayoutSlot(ctx, poolID, userID, slot)
		if errors.Is(err, domainerrors.ErrSlotConflict) {
			resolveLogger(s.Logger).Warn("provisional slot lost race, retrying",
				"event", "sequencer_provisional_slot_conflict",
				"module", "savings-core/payout-sequencer",
				"layer", "application",
				"pool_id", poolID,
				"user_id", userID,
				"slot", slot,
				"attempt", attempt+1,
			)
			continue
		}
		if err != nil {
			return 0, err
		}
		return slot, nil
	}
	return 0, domainerrors.ErrSlotConflict
}

type rankedMember struct {
	ports.MemberTrust
	minSlot int
}

// ResequencePool computes the definitive payout order for a locked pool from a
// single snapshot of membership and trust data. Most-constrained members are
// placed first: letting flexible members grab low slots greedily could strand
// a highly-restricted member with no legal slot.
func (s Service) ResequencePool(ctx context.Context, poolID string, capacity int) ([]entities.SlotAssignment, error) {
	poolID = strings.TrimSpace(poolID)
	if poolID == "" || capacity <= 0 {
		return nil, domainerrors.ErrInvalidInput
	}

	memberships, err := s.Memberships.ListMemberships(ctx, poolID)
	if err != nil {
		return nil, err
	}

	ranked := make([]rankedMember, 0, len(memberships))
	for _, membership := range memberships {
		trust, err := s.Trust.GetMemberTrust(ctx, membership.UserID)
		if err != nil {
			return nil, err
		}
		eligible := entities.EligibleSlotRange(trust.Score, trust.CompletedCycles, capacity)
		ranked = append(ranked, rankedMember{MemberTrust: trust, minSlot: eligible.Min})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CompletedCycles > ranked[j].CompletedCycles
	})

	restricted := make([]rankedMember, 0, len(ranked))
	unrestricted := make([]rankedMember, 0, len(ranked))
	for _, member := range ranked {
		if member.minSlot > 1 {
			restricted = append(restricted, member)
		} else {
			unrestricted = append(unrestricted, member)
		}
	}
	// Most-constrained first; the stable sort keeps the score ranking within
	// equal floors.
	sort.SliceStable(restricted, func(i, j int) bool {
		return restricted[i].minSlot > restricted[j].minSlot
	})

	taken := make(map[int]bool, capacity)
	assignments := make([]entities.SlotAssignment, 0, len(ranked))

	place := func(member rankedMember, floor int) error {
		slot := firstFreeSlot(taken, floor, capacity)
		if slot == 0 {
			slot = firstFreeSlot(taken, 1, capacity)
		}
		if slot == 0 {
			return domainerrors.ErrSlotExhausted
		}
		taken[slot] = true
		assignments = append(assignments, entities.SlotAssignment{
			UserID:          member.UserID,
			Score:           member.Score,
			CompletedCycles: member.CompletedCycles,
			AssignedSlot:    slot,
		})
		return nil
	}

	for _, member := range restricted {
		if err := place(member, member.minSlot); err != nil {
			return nil, err
		}
	}
	for _, member := range unrestricted {
		if err := place(member, 1); err != nil {
			return nil, err
		}
	}

	if err := s.Memberships.ClearPayoutSlots(ctx, poolID); err != nil {
		resolveLogger(s.Logger).Error("payout slot clear failed",
			"event", "sequencer_slot_clear_failed",
			"module", "savings-core/payout-sequencer",
			"layer", "application",
			"pool_id", poolID,
			"error", err.Error(),
		)
	}

	// Best-effort per-row persistence: one failed write must not abort the
	// rest of the assignment.
	for _, assignment := range assignments {
		if err := s.Memberships.SavePayoutSlot(ctx, poolID, assignment.UserID, assignment.AssignedSlot); err != nil {
			resolveLogger(s.Logger).Error("payout slot write failed",
				"event", "sequencer_slot_write_failed",
				"module", "savings-core/payout-sequencer",
				"layer", "application",
				"pool_id", poolID,
				"user_id", assignment.UserID,
				"slot", assignment.AssignedSlot,
				"error", err.Error(),
			)
		}
	}

	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].AssignedSlot < assignments[j].AssignedSlot
	})

	resolveLogger(s.Logger).Info("pool resequenced",
		"event", "sequencer_pool_resequenced",
		"module", "savings-core/payout-sequencer",
		"layer", "application",
		"pool_id", poolID,
		"member_count", len(assignments),
		"capacity", capacity,
	)
	return assignments, nil
}

// ExplainPosition renders the eligibility rationale for a member; it shares
// the range computation with assignment and has no side effects.
func (s Service) ExplainPosition(ctx context.Context, userID string, capacity int) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domainerrors.ErrInvalidInput
	}
	if capacity <= 0 {
		capacity = entities.DefaultPoolCapacity
	}

	trust, err := s.Trust.GetMemberTrust(ctx, userID)
	if err != nil {
		return "", err
	}

	eligible := entities.EligibleSlotRange(trust.Score, trust.CompletedCycles, capacity)
	switch {
	case eligible.Min <= 1:
		return fmt.Sprintf(
			"Your score of %d and %d completed cycles qualify you for any payout slot from 1 to %d, including the first payout.",
			trust.Score, trust.CompletedCycles, capacity), nil
	case trust.Score >= entities.EarlySlotMinScore:
		return fmt.Sprintf(
			"Your score of %d qualifies you for payout slots %d to %d. The first payout slot requires %d completed cycles; you have %d.",
			trust.Score, eligible.Min, capacity, entities.Slot1MinCycles, trust.CompletedCycles), nil
	case trust.Score >= entities.MidSlotMinScore:
		return fmt.Sprintf(
			"Your score of %d qualifies you for payout slots %d to %d. Earlier slots require a score of at least %d.",
			trust.Score, eligible.Min, capacity, entities.EarlySlotMinScore), nil
	default:
		return fmt.Sprintf(
			"New and rebuilding members are placed in the later payout slots (%d to %d) until a contribution track record is established.",
			eligible.Min, capacity), nil
	}
}

func firstFreeSlot(taken map[int]bool, floor int, capacity int) int {
	if floor < 1 {
		floor = 1
	}
	for slot := floor; slot <= capacity; slot++ {
		if !taken[slot] {
			return slot
		}
	}
	return 0
}
