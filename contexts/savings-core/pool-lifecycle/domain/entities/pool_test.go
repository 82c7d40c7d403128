package entities

import "testing"

func TestTransitionAllowed(t *testing.T) {
	allowed := []struct {
		from PoolStatus
		to   PoolStatus
	}{
		{PoolStatusOpen, PoolStatusFilling},
		{PoolStatusFilling, PoolStatusLocked},
		{PoolStatusFilling, PoolStatusTimeout},
		{PoolStatusLocked, PoolStatusActive},
		{PoolStatusActive, PoolStatusCompleted},
		{PoolStatusActive, PoolStatusFrozen},
		{PoolStatusFrozen, PoolStatusActive},
	}
	for _, edge := range allowed {
		if !TransitionAllowed(edge.from, edge.to) {
			t.Fatalf("expected %s -> %s to be allowed", edge.from, edge.to)
		}
	}

	statuses := []PoolStatus{
		PoolStatusOpen, PoolStatusFilling, PoolStatusLocked, PoolStatusActive,
		PoolStatusCompleted, PoolStatusTimeout, PoolStatusFrozen,
	}
	edges := make(map[[2]PoolStatus]bool, len(allowed))
	for _, edge := range allowed {
		edges[[2]PoolStatus{edge.from, edge.to}] = true
	}
	for _, from := range statuses {
		for _, to := range statuses {
			if edges[[2]PoolStatus{from, to}] {
				continue
			}
			if TransitionAllowed(from, to) {
				t.Fatalf("expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestGuardPredicates(t *testing.T) {
	pool := Pool{Status: PoolStatusFilling, Capacity: 3, CurrentMembers: 2}
	if !pool.IsJoinable() {
		t.Fatalf("expected filling pool to be joinable")
	}
	if pool.CanLock() {
		t.Fatalf("expected pool below capacity not to lock")
	}

	pool.CurrentMembers = 3
	if !pool.CanLock() {
		t.Fatalf("expected full filling pool to lock")
	}

	pool.Status = PoolStatusLocked
	if pool.CanActivate() {
		t.Fatalf("expected locked pool without a start date not to activate")
	}

	pool.Status = PoolStatusActive
	pool.CurrentCycle = 2
	pool.TotalCycles = 3
	if pool.CanComplete() {
		t.Fatalf("expected pool mid-rotation not to complete")
	}
	pool.CurrentCycle = 3
	if !pool.CanComplete() {
		t.Fatalf("expected pool at final cycle to complete")
	}
}

func TestTerminalStates(t *testing.T) {
	for _, status := range []PoolStatus{PoolStatusCompleted, PoolStatusTimeout} {
		if !(Pool{Status: status}).IsTerminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	for _, status := range []PoolStatus{PoolStatusOpen, PoolStatusFilling, PoolStatusLocked, PoolStatusActive, PoolStatusFrozen} {
		if (Pool{Status: status}).IsTerminal() {
			t.Fatalf("expected %s not to be terminal", status)
		}
	}
	if (Pool{Status: PoolStatus("bogus")}).IsTerminal() {
		t.Fatalf("expected unknown status not to be terminal")
	}
}
