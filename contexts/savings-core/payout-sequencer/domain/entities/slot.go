package entities

// Slot policy constants. A payout slot is the ordinal position (1 = first) at
// which a member receives the pool's lump sum.
const (
	EarlySlotMinScore = 80
	MidSlotMinScore   = 60

	Slot1MinCycles     = 2
	EarlySlotMinCycles = 1

	DefaultPoolCapacity = 5
)

type SlotRange struct {
	Min int
	Max int
}

type SlotAssignment struct {
	UserID          string
	Score           int
	CompletedCycles int
	AssignedSlot    int
}

// EligibleSlotRange maps trust score and completed-cycle history to the slot
// positions a member may legally occupy. Low-trust and unproven members are
// pushed to the back of the rotation: by the time they are paid they have
// already contributed most of a cycle's worth, which is the core fraud
// defense against join-collect-disappear.
func EligibleSlotRange(score int, completedCycles int, capacity int) SlotRange {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}

	switch {
	case score >= EarlySlotMinScore && completedCycles >= Slot1MinCycles:
		return SlotRange{Min: 1, Max: capacity}
	case score >= EarlySlotMinScore && completedCycles >= EarlySlotMinCycles:
		return SlotRange{Min: 2, Max: capacity}
	case score >= MidSlotMinScore:
		return SlotRange{Min: 3, Max: capacity}
	default:
		min := ceilSixtyPercent(capacity) + 1
		if min < 4 {
			min = 4
		}
		return SlotRange{Min: min, Max: capacity}
	}
}

// ceilSixtyPercent is ceil(capacity * 0.6) in integer arithmetic.
func ceilSixtyPercent(capacity int) int {
	return (capacity*3 + 4) / 5
}
