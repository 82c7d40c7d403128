package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainerrors "esusu/contexts/savings-core/payout-sequencer/domain/errors"
	"esusu/contexts/savings-core/payout-sequencer/ports"
)

type Store struct {
	mu sync.RWMutex

	// memberships[poolID][userID] = slot (0 when unassigned)
	memberships map[string]map[string]int
	trust       map[string]ports.MemberTrust
}

func NewStore() *Store {
	return &Store{
		memberships: make(map[string]map[string]int),
		trust:       make(map[string]ports.MemberTrust),
	}
}

func (s *Store) SeedTrust(item ports.MemberTrust) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trust[strings.TrimSpace(item.UserID)] = item
}

func (s *Store) AddMembership(poolID string, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poolID = strings.TrimSpace(poolID)
	if _, ok := s.memberships[poolID]; !ok {
		s.memberships[poolID] = make(map[string]int)
	}
	s.memberships[poolID][strings.TrimSpace(userID)] = 0
}

func (s *Store) ListMemberships(_ context.Context, poolID string) ([]ports.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := s.memberships[strings.TrimSpace(poolID)]
	items := make([]ports.Membership, 0, len(members))
	for userID, slot := range members {
		items = append(items, ports.Membership{
			PoolID:     strings.TrimSpace(poolID),
			UserID:     userID,
			PayoutSlot: slot,
			HasSlot:    slot > 0,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UserID < items[j].UserID
	})
	return items, nil
}

func (s *Store) ListOccupiedSlots(_ context.Context, poolID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]int, 0)
	for _, slot := range s.memberships[strings.TrimSpace(poolID)] {
		if slot > 0 {
			slots = append(slots, slot)
		}
	}
	sort.Ints(slots)
	return slots, nil
}

func (s *Store) SavePayoutSlot(_ context.Context, poolID string, userID string, slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poolID = strings.TrimSpace(poolID)
	userID = strings.TrimSpace(userID)
	members, ok := s.memberships[poolID]
	if !ok {
		return domainerrors.ErrInvalidInput
	}
	if _, ok := members[userID]; !ok {
		return domainerrors.ErrInvalidInput
	}
	for other, taken := range members {
		if other != userID && taken == slot {
			return domainerrors.ErrSlotConflict
		}
	}
	members[userID] = slot
	return nil
}

func (s *Store) ClearPayoutSlots(_ context.Context, poolID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID := range s.memberships[strings.TrimSpace(poolID)] {
		s.memberships[strings.TrimSpace(poolID)][userID] = 0
	}
	return nil
}

func (s *Store) GetMemberTrust(_ context.Context, userID string) (ports.MemberTrust, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID = strings.TrimSpace(userID)
	trust, ok := s.trust[userID]
	if !ok {
		// Unscored members rank with the engine's default signal.
		return ports.MemberTrust{UserID: userID, Score: 50}, nil
	}
	return trust, nil
}

var _ ports.MembershipRepository = (*Store)(nil)
var _ ports.TrustReader = (*Store)(nil)
