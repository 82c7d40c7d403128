package entities

import "time"

type PoolStatus string

const (
	PoolStatusOpen      PoolStatus = "open"
	PoolStatusFilling   PoolStatus = "filling"
	PoolStatusLocked    PoolStatus = "locked"
	PoolStatusActive    PoolStatus = "active"
	PoolStatusCompleted PoolStatus = "completed"
	PoolStatusTimeout   PoolStatus = "timeout"
	PoolStatusFrozen    PoolStatus = "frozen"
)

// transitionTable is the full lifecycle graph. completed and timeout are
// terminal; frozen is the administrative override with the only recovery edge.
var transitionTable = map[PoolStatus][]PoolStatus{
	PoolStatusOpen:      {PoolStatusFilling},
	PoolStatusFilling:   {PoolStatusLocked, PoolStatusTimeout},
	PoolStatusLocked:    {PoolStatusActive},
	PoolStatusActive:    {PoolStatusCompleted, PoolStatusFrozen},
	PoolStatusCompleted: {},
	PoolStatusTimeout:   {},
	PoolStatusFrozen:    {PoolStatusActive},
}

func IsValidStatus(value PoolStatus) bool {
	_, ok := transitionTable[value]
	return ok
}

// TransitionAllowed reports whether from→to is an edge of the lifecycle graph.
// Self-transitions are never allowed.
func TransitionAllowed(from PoolStatus, to PoolStatus) bool {
	if from == to {
		return false
	}
	for _, target := range transitionTable[from] {
		if target == to {
			return true
		}
	}
	return false
}

func AllowedTargets(from PoolStatus) []PoolStatus {
	return append([]PoolStatus(nil), transitionTable[from]...)
}

type Pool struct {
	PoolID         string
	Status         PoolStatus
	Capacity       int
	CurrentMembers int
	CurrentCycle   int
	TotalCycles    int
	StartDate      *time.Time
	JoinDeadline   *time.Time
	Amount         float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Guard predicates are pure functions of pool state.

func (p Pool) IsJoinable() bool {
	return p.Status == PoolStatusFilling
}

func (p Pool) CanLock() bool {
	return p.Status == PoolStatusFilling && p.CurrentMembers >= p.Capacity
}

func (p Pool) CanActivate() bool {
	return p.Status == PoolStatusLocked && p.StartDate != nil && p.CurrentMembers >= p.Capacity
}

func (p Pool) CanComplete() bool {
	return p.Status == PoolStatusActive && p.CurrentCycle >= p.TotalCycles
}

func (p Pool) IsTerminal() bool {
	return len(transitionTable[p.Status]) == 0 && IsValidStatus(p.Status)
}
