package ports

import (
	"context"
	"time"

	contractsv1 "esusu/contracts/gen/events/v1"
)

type PoolSnapshot struct {
	PoolID         string
	Status         string
	Capacity       int
	CurrentMembers int
	Amount         float64
}

type PoolRepository interface {
	GetPoolSnapshot(ctx context.Context, poolID string) (PoolSnapshot, error)
	IncrementPoolMembers(ctx context.Context, poolID string) error
}

type PoolMember struct {
	PoolID   string
	UserID   string
	JoinedAt time.Time
}

type MembershipRepository interface {
	CreateMembership(ctx context.Context, member PoolMember) error
	GetMembership(ctx context.Context, poolID string, userID string) (PoolMember, bool, error)
}

type TransitionOutcome struct {
	PoolID         string
	Success        bool
	PreviousStatus string
	NewStatus      string
	Message        string
}

type LifecycleGateway interface {
	Advance(ctx context.Context, poolID string, target string) (TransitionOutcome, error)
	AutoAdvance(ctx context.Context, poolID string) ([]TransitionOutcome, error)
}

type SlotOutcome struct {
	UserID string
	Slot   int
}

type SequencerGateway interface {
	AssignProvisionalSlot(ctx context.Context, poolID string, userID string, capacity int) (int, error)
	Resequence(ctx context.Context, poolID string, capacity int) ([]SlotOutcome, error)
}

type DefaultOutcome struct {
	UserID            string
	PoolID            string
	Severity          string
	PreviousScore     int
	NewScore          int
	ReferrerPenalized bool
	MissedPayments    int
}

type ReputationGateway interface {
	CanJoinAmount(ctx context.Context, userID string, amount float64) (bool, error)
	RecordDefault(ctx context.Context, userID string, poolID string, abandoned bool) (DefaultOutcome, error)
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
