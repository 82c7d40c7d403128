package ports

import "context"

type Membership struct {
	PoolID     string
	UserID     string
	PayoutSlot int
	HasSlot    bool
}

type MembershipRepository interface {
	ListMemberships(ctx context.Context, poolID string) ([]Membership, error)
	ListOccupiedSlots(ctx context.Context, poolID string) ([]int, error)
	// SavePayoutSlot writes the slot for one member. The persistence layer
	// enforces uniqueness of (pool_id, payout_slot); a lost race surfaces as
	// ErrSlotConflict.
	SavePayoutSlot(ctx context.Context, poolID string, userID string, slot int) error
	// ClearPayoutSlots nulls every slot in the pool ahead of a definitive
	// rewrite, so final assignments cannot collide with stale provisional
	// slots under the uniqueness constraint.
	ClearPayoutSlots(ctx context.Context, poolID string) error
}

// MemberTrust is the snapshot of the trust signal the sequencer ranks on.
type MemberTrust struct {
	UserID          string
	Score           int
	CompletedCycles int
}

// TrustReader is backed by the reputation engine; scores are read just-in-time
// per invocation, never cached across calls.
type TrustReader interface {
	GetMemberTrust(ctx context.Context, userID string) (MemberTrust, error)
}
