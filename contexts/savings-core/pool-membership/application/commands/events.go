package commands

import (
	"encoding/json"
	"time"

	"esusu/contexts/savings-core/pool-membership/ports"
)

const (
	eventTypeMemberJoined       = "pool.member_joined"
	eventTypePoolLocked         = "pool.locked"
	eventTypeContributionMissed = "pool.contribution_missed"

	membershipSourceService = "pool-membership"
	membershipSchemaVersion = 1
)

type memberJoinedPayload struct {
	PoolID         string    `json:"pool_id"`
	UserID         string    `json:"user_id"`
	PayoutSlot     int       `json:"payout_slot"`
	CurrentMembers int       `json:"current_members"`
	JoinedAt       time.Time `json:"joined_at"`
}

type lockedAssignmentPayload struct {
	UserID     string `json:"user_id"`
	PayoutSlot int    `json:"payout_slot"`
}

type poolLockedPayload struct {
	PoolID      string                    `json:"pool_id"`
	LockedAt    time.Time                 `json:"locked_at"`
	Assignments []lockedAssignmentPayload `json:"assignments"`
}

type contributionMissedPayload struct {
	PoolID            string `json:"pool_id"`
	UserID            string `json:"user_id"`
	Severity          string `json:"severity"`
	PreviousScore     int    `json:"previous_score"`
	NewScore          int    `json:"new_score"`
	ReferrerPenalized bool   `json:"referrer_penalized"`
	MissedPayments    int    `json:"missed_payments"`
}

func newMembershipEnvelope(
	eventID string,
	eventType string,
	poolID string,
	occurredAt time.Time,
	payload any,
) (ports.EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    occurredAt.UTC(),
		SourceService: membershipSourceService,
		TraceID:       eventID,
		SchemaVersion: membershipSchemaVersion,
		PartitionKey:  poolID,
		Data:          data,
	}, nil
}
