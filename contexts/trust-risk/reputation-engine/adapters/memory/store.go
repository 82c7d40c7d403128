package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	domainerrors "esusu/contexts/trust-risk/reputation-engine/domain/errors"
	"esusu/contexts/trust-risk/reputation-engine/ports"
)

type membershipKey struct {
	poolID string
	userID string
}

type Store struct {
	mu sync.RWMutex

	scores     map[string]int
	cycles     map[string]int
	poolMissed map[membershipKey]int
	referrals  map[string]ports.Referral

	failTrustWrites bool
}

func NewStore() *Store {
	return &Store{
		scores:     make(map[string]int),
		cycles:     make(map[string]int),
		poolMissed: make(map[membershipKey]int),
		referrals:  make(map[string]ports.Referral),
	}
}

func (s *Store) SeedTrustScore(userID string, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[strings.TrimSpace(userID)] = score
}

func (s *Store) SeedSuccessfulCycles(userID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles[strings.TrimSpace(userID)] = count
}

func (s *Store) SeedMembership(poolID string, userID string, missedPayments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poolMissed[membershipKey{poolID: strings.TrimSpace(poolID), userID: strings.TrimSpace(userID)}] = missedPayments
}

func (s *Store) SeedReferral(referral ports.Referral) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referrals[strings.TrimSpace(referral.ReferredUserID)] = referral
}

// SetFailTrustWrites makes subsequent SaveTrustScore calls fail, so tests can
// exercise the log-and-swallow path.
func (s *Store) SetFailTrustWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failTrustWrites = fail
}

func (s *Store) GetTrustScore(_ context.Context, userID string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[strings.TrimSpace(userID)]
	return score, ok, nil
}

func (s *Store) SaveTrustScore(_ context.Context, userID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTrustWrites {
		return errors.New("trust score write rejected")
	}
	s.scores[strings.TrimSpace(userID)] = score
	return nil
}

func (s *Store) ListTrustScores(_ context.Context) ([]ports.ProfileScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.ProfileScore, 0, len(s.scores))
	for userID, score := range s.scores {
		items = append(items, ports.ProfileScore{UserID: userID, Score: score})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UserID < items[j].UserID
	})
	return items, nil
}

func (s *Store) CountSuccessfulCycles(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycles[strings.TrimSpace(userID)], nil
}

func (s *Store) CountMissedPayments(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID = strings.TrimSpace(userID)
	total := 0
	for key, missed := range s.poolMissed {
		if key.userID == userID {
			total += missed
		}
	}
	return total, nil
}

func (s *Store) GetPoolMissedPayments(_ context.Context, poolID string, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := membershipKey{poolID: strings.TrimSpace(poolID), userID: strings.TrimSpace(userID)}
	missed, ok := s.poolMissed[key]
	if !ok {
		return 0, domainerrors.ErrMembershipNotFound
	}
	return missed, nil
}

func (s *Store) IncrementPoolMissedPayments(_ context.Context, poolID string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := membershipKey{poolID: strings.TrimSpace(poolID), userID: strings.TrimSpace(userID)}
	if _, ok := s.poolMissed[key]; !ok {
		return domainerrors.ErrMembershipNotFound
	}
	s.poolMissed[key]++
	return nil
}

func (s *Store) GetRewardedReferral(_ context.Context, referredUserID string) (ports.Referral, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	referral, ok := s.referrals[strings.TrimSpace(referredUserID)]
	if !ok || referral.Status != ports.ReferralStatusRewarded {
		return ports.Referral{}, false, nil
	}
	return referral, true, nil
}

var _ ports.ProfileRepository = (*Store)(nil)
var _ ports.MembershipHistoryRepository = (*Store)(nil)
var _ ports.ReferralRepository = (*Store)(nil)
