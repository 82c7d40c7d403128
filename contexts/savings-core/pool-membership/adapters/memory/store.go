package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	domainerrors "esusu/contexts/savings-core/pool-membership/domain/errors"
	"esusu/contexts/savings-core/pool-membership/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	mu sync.RWMutex

	pools       map[string]ports.PoolSnapshot
	members     map[string]map[string]ports.PoolMember
	idempotency map[string]ports.IdempotencyRecord
	outbox      map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		pools:       make(map[string]ports.PoolSnapshot),
		members:     make(map[string]map[string]ports.PoolMember),
		idempotency: make(map[string]ports.IdempotencyRecord),
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) SeedPool(snapshot ports.PoolSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[strings.TrimSpace(snapshot.PoolID)] = snapshot
}

// SetPoolStatus mirrors a lifecycle transition into the snapshot table.
func (s *Store) SetPoolStatus(poolID string, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.pools[strings.TrimSpace(poolID)]
	if !ok {
		return
	}
	snapshot.Status = status
	s.pools[strings.TrimSpace(poolID)] = snapshot
}

func (s *Store) PendingOutboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, row := range s.outbox {
		if !row.published {
			count++
		}
	}
	return count
}

func (s *Store) GetPoolSnapshot(_ context.Context, poolID string) (ports.PoolSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.pools[strings.TrimSpace(poolID)]
	if !ok {
		return ports.PoolSnapshot{}, domainerrors.ErrPoolNotFound
	}
	return snapshot, nil
}

func (s *Store) IncrementPoolMembers(_ context.Context, poolID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.pools[strings.TrimSpace(poolID)]
	if !ok {
		return domainerrors.ErrPoolNotFound
	}
	if snapshot.CurrentMembers >= snapshot.Capacity {
		return domainerrors.ErrPoolFull
	}
	snapshot.CurrentMembers++
	s.pools[strings.TrimSpace(poolID)] = snapshot
	return nil
}

func (s *Store) CreateMembership(_ context.Context, member ports.PoolMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poolID := strings.TrimSpace(member.PoolID)
	userID := strings.TrimSpace(member.UserID)
	if _, ok := s.members[poolID]; !ok {
		s.members[poolID] = make(map[string]ports.PoolMember)
	}
	if _, exists := s.members[poolID][userID]; exists {
		return domainerrors.ErrAlreadyMember
	}
	s.members[poolID][userID] = ports.PoolMember{
		PoolID:   poolID,
		UserID:   userID,
		JoinedAt: member.JoinedAt.UTC(),
	}
	return nil
}

func (s *Store) GetMembership(_ context.Context, poolID string, userID string) (ports.PoolMember, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, ok := s.members[strings.TrimSpace(poolID)][strings.TrimSpace(userID)]
	if !ok {
		return ports.PoolMember{}, false, nil
	}
	return member, true, nil
}

func (s *Store) GetRecord(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.idempotency[key]
	if !exists {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.After(now) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.idempotency[record.Key]
	if exists {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyKeyConflict
		}
		if !bytes.Equal(existing.ResponsePayload, record.ResponsePayload) {
			return domainerrors.ErrIdempotencyKeyConflict
		}
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrOutboxConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrOutboxConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.PoolRepository = (*Store)(nil)
var _ ports.MembershipRepository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
