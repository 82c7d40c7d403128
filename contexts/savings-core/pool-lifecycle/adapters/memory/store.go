package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"esusu/contexts/savings-core/pool-lifecycle/domain/entities"
	domainerrors "esusu/contexts/savings-core/pool-lifecycle/domain/errors"
	"esusu/contexts/savings-core/pool-lifecycle/ports"
)

type Store struct {
	mu sync.RWMutex

	pools map[string]entities.Pool

	failStatusWrites bool
}

func NewStore() *Store {
	return &Store{
		pools: make(map[string]entities.Pool),
	}
}

func (s *Store) SeedPool(pool entities.Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[strings.TrimSpace(pool.PoolID)] = pool
}

func (s *Store) GetPoolRecord(poolID string) (entities.Pool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool, ok := s.pools[strings.TrimSpace(poolID)]
	return pool, ok
}

// AdjustMembers shifts the member counter; used by composition glue that owns
// membership writes against the same pool records.
func (s *Store) AdjustMembers(poolID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, ok := s.pools[strings.TrimSpace(poolID)]
	if !ok {
		return 0, domainerrors.ErrPoolNotFound
	}
	pool.CurrentMembers += delta
	s.pools[pool.PoolID] = pool
	return pool.CurrentMembers, nil
}

// SetFailStatusWrites makes subsequent UpdatePoolStatus calls fail, so tests
// can assert that a persistence failure leaves the pool untouched.
func (s *Store) SetFailStatusWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatusWrites = fail
}

func (s *Store) GetPool(_ context.Context, poolID string) (entities.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, ok := s.pools[strings.TrimSpace(poolID)]
	if !ok {
		return entities.Pool{}, domainerrors.ErrPoolNotFound
	}
	return pool, nil
}

func (s *Store) UpdatePoolStatus(
	_ context.Context,
	poolID string,
	from entities.PoolStatus,
	to entities.PoolStatus,
	updatedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failStatusWrites {
		return errors.New("pool status write rejected")
	}

	pool, ok := s.pools[strings.TrimSpace(poolID)]
	if !ok {
		return domainerrors.ErrPoolNotFound
	}
	if pool.Status != from {
		return domainerrors.ErrStatusChanged
	}
	pool.Status = to
	pool.UpdatedAt = updatedAt.UTC()
	s.pools[pool.PoolID] = pool
	return nil
}

func (s *Store) ListCompletablePools(_ context.Context, limit int) ([]entities.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Pool, 0)
	for _, pool := range s.pools {
		if pool.Status == entities.PoolStatusActive && pool.CurrentCycle >= pool.TotalCycles {
			items = append(items, pool)
		}
	}
	sortPools(items)
	return capPools(items, limit), nil
}

func (s *Store) ListExpiredFillingPools(_ context.Context, now time.Time, limit int) ([]entities.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Pool, 0)
	for _, pool := range s.pools {
		if pool.Status == entities.PoolStatusFilling && pool.JoinDeadline != nil && pool.JoinDeadline.Before(now) {
			items = append(items, pool)
		}
	}
	sortPools(items)
	return capPools(items, limit), nil
}

func sortPools(items []entities.Pool) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].PoolID < items[j].PoolID
	})
}

func capPools(items []entities.Pool, limit int) []entities.Pool {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

var _ ports.Repository = (*Store)(nil)
