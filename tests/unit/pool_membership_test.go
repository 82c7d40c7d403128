package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	payoutsequencer "esusu/contexts/savings-core/payout-sequencer"
	sequencermemory "esusu/contexts/savings-core/payout-sequencer/adapters/memory"
	poollifecycle "esusu/contexts/savings-core/pool-lifecycle"
	lifecyclememory "esusu/contexts/savings-core/pool-lifecycle/adapters/memory"
	lifecycleentities "esusu/contexts/savings-core/pool-lifecycle/domain/entities"
	poolmembership "esusu/contexts/savings-core/pool-membership"
	membershipmemory "esusu/contexts/savings-core/pool-membership/adapters/memory"
	"esusu/contexts/savings-core/pool-membership/application/workers"
	domainerrors "esusu/contexts/savings-core/pool-membership/domain/errors"
	"esusu/contexts/savings-core/pool-membership/ports"
	httptransport "esusu/contexts/savings-core/pool-membership/transport/http"
	reputationengine "esusu/contexts/trust-risk/reputation-engine"
	"esusu/internal/app/bootstrap"
)

// gluePools keeps the membership snapshot table and the lifecycle pool record
// counting the same members, the way the shared pools table does in postgres.
type gluePools struct {
	snapshots *membershipmemory.Store
	lifecycle *lifecyclememory.Store
}

func (g gluePools) GetPoolSnapshot(ctx context.Context, poolID string) (ports.PoolSnapshot, error) {
	return g.snapshots.GetPoolSnapshot(ctx, poolID)
}

func (g gluePools) IncrementPoolMembers(ctx context.Context, poolID string) error {
	if err := g.snapshots.IncrementPoolMembers(ctx, poolID); err != nil {
		return err
	}
	_, err := g.lifecycle.AdjustMembers(poolID, 1)
	return err
}

// glueMemberships mirrors membership rows into the sequencer's view.
type glueMemberships struct {
	memberships *membershipmemory.Store
	sequencer   *sequencermemory.Store
}

func (g glueMemberships) CreateMembership(ctx context.Context, member ports.PoolMember) error {
	if err := g.memberships.CreateMembership(ctx, member); err != nil {
		return err
	}
	g.sequencer.AddMembership(member.PoolID, member.UserID)
	return nil
}

func (g glueMemberships) GetMembership(ctx context.Context, poolID string, userID string) (ports.PoolMember, bool, error) {
	return g.memberships.GetMembership(ctx, poolID, userID)
}

type capturePublisher struct {
	topics []string
}

func (p *capturePublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	return nil
}

type membershipHarness struct {
	membership poolmembership.Module
	store      *membershipmemory.Store
	reputation reputationengine.Module
	lifecycle  poollifecycle.Module
	sequencer  payoutsequencer.Module
}

func newMembershipHarness() *membershipHarness {
	reputation := reputationengine.NewInMemoryModule(nil)
	lifecycle := poollifecycle.NewInMemoryModule(nil)

	sequencerStore := sequencermemory.NewStore()
	sequencer := payoutsequencer.NewModule(payoutsequencer.Dependencies{
		Memberships: sequencerStore,
		Trust:       bootstrap.TrustReaderGateway{Reputation: reputation.Service},
	})
	sequencer.Store = sequencerStore

	store := membershipmemory.NewStore()
	membership := poolmembership.NewModule(poolmembership.Dependencies{
		Pools:          gluePools{snapshots: store, lifecycle: lifecycle.Store},
		Memberships:    glueMemberships{memberships: store, sequencer: sequencerStore},
		Idempotency:    store,
		Outbox:         store,
		Lifecycle:      bootstrap.LifecycleGateway{Lifecycle: lifecycle.Service},
		Sequencer:      bootstrap.SequencerGateway{Sequencer: sequencer.Service},
		Reputation:     bootstrap.ReputationGateway{Reputation: reputation.Service},
		Clock:          store,
		IDGenerator:    store,
		IdempotencyTTL: time.Hour,
	})
	membership.Store = store

	return &membershipHarness{
		membership: membership,
		store:      store,
		reputation: reputation,
		lifecycle:  lifecycle,
		sequencer:  sequencer,
	}
}

func (h *membershipHarness) seedPool(poolID string, capacity int, amount float64) {
	h.store.SeedPool(ports.PoolSnapshot{
		PoolID:   poolID,
		Status:   "open",
		Capacity: capacity,
		Amount:   amount,
	})
	h.lifecycle.Store.SeedPool(lifecycleentities.Pool{
		PoolID:    poolID,
		Status:    lifecycleentities.PoolStatusOpen,
		Capacity:  capacity,
		CreatedAt: time.Now().UTC(),
	})
}

func TestMembershipJoinFillsAndLocksPool(t *testing.T) {
	h := newMembershipHarness()
	h.seedPool("pool-1", 2, 50)
	h.reputation.Store.SeedTrustScore("alice", 85)
	h.reputation.Store.SeedSuccessfulCycles("alice", 2)
	h.reputation.Store.SeedTrustScore("bob", 85)
	h.reputation.Store.SeedSuccessfulCycles("bob", 1)

	first, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", httptransport.JoinPoolRequest{
		UserID:         "alice",
		IdempotencyKey: "join-alice",
	})
	if err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if first.Data.PayoutSlot != 1 {
		t.Fatalf("expected alice in slot 1, got %d", first.Data.PayoutSlot)
	}
	if first.Data.PoolStatus != "filling" || first.Data.PoolLocked {
		t.Fatalf("expected filling pool after first join, got %+v", first.Data)
	}

	second, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", httptransport.JoinPoolRequest{
		UserID:         "bob",
		IdempotencyKey: "join-bob",
	})
	if err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	if !second.Data.PoolLocked || second.Data.PoolStatus != "locked" {
		t.Fatalf("expected second join to lock the pool, got %+v", second.Data)
	}
	if second.Data.PayoutSlot != 2 {
		t.Fatalf("expected bob in slot 2 after resequencing, got %d", second.Data.PayoutSlot)
	}

	pool, ok := h.lifecycle.Store.GetPoolRecord("pool-1")
	if !ok || pool.Status != lifecycleentities.PoolStatusLocked {
		t.Fatalf("expected lifecycle record locked, got %+v", pool)
	}

	// Two member_joined events plus the locked event.
	if got := h.store.PendingOutboxCount(); got != 3 {
		t.Fatalf("expected 3 pending outbox rows, got %d", got)
	}
}

func TestMembershipJoinReplaysOnSameKey(t *testing.T) {
	h := newMembershipHarness()
	h.seedPool("pool-1", 3, 50)
	h.reputation.Store.SeedTrustScore("alice", 85)
	h.reputation.Store.SeedSuccessfulCycles("alice", 2)

	first, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", httptransport.JoinPoolRequest{
		UserID:         "alice",
		IdempotencyKey: "join-alice",
	})
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}

	replay, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", httptransport.JoinPoolRequest{
		UserID:         "alice",
		IdempotencyKey: "join-alice",
	})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !replay.Data.Replayed {
		t.Fatalf("expected replayed result")
	}
	if replay.Data.PayoutSlot != first.Data.PayoutSlot {
		t.Fatalf("expected replay to return slot %d, got %d", first.Data.PayoutSlot, replay.Data.PayoutSlot)
	}

	// Replay must not create a second membership or event.
	if got := h.store.PendingOutboxCount(); got != 1 {
		t.Fatalf("expected a single outbox row, got %d", got)
	}

	_, err = h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", httptransport.JoinPoolRequest{
		UserID:         "mallory",
		IdempotencyKey: "join-alice",
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyConflict) {
		t.Fatalf("expected idempotency key conflict for a different request, got %v", err)
	}
}

func TestMembershipJoinRequiresIdempotencyKey(t *testing.T) {
	h := newMembershipHarness()
	h.seedPool("pool-1", 3, 50)

	_, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", httptransport.JoinPoolRequest{
		UserID: "alice",
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected ErrIdempotencyKeyRequired, got %v", err)
	}
}

func TestMembershipJoinRejectsIneligibleTier(t *testing.T) {
	h := newMembershipHarness()
	h.seedPool("pool-big", 3, 1000)
	h.reputation.Store.SeedTrustScore("alice", 50)

	_, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-big", httptransport.JoinPoolRequest{
		UserID:         "alice",
		IdempotencyKey: "join-alice",
	})
	if !errors.Is(err, domainerrors.ErrTierNotEligible) {
		t.Fatalf("expected ErrTierNotEligible, got %v", err)
	}
}

func TestMembershipJoinRejectsFullPool(t *testing.T) {
	h := newMembershipHarness()
	h.seedPool("pool-1", 1, 50)
	h.reputation.Store.SeedTrustScore("alice", 85)
	h.reputation.Store.SeedSuccessfulCycles("alice", 2)

	if _, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", httptransport.JoinPoolRequest{
		UserID:         "alice",
		IdempotencyKey: "join-alice",
	}); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	_, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", httptransport.JoinPoolRequest{
		UserID:         "bob",
		IdempotencyKey: "join-bob",
	})
	if !errors.Is(err, domainerrors.ErrPoolFull) {
		t.Fatalf("expected ErrPoolFull, got %v", err)
	}
}

func TestMembershipJoinRejectsUnknownPool(t *testing.T) {
	h := newMembershipHarness()

	_, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-x", httptransport.JoinPoolRequest{
		UserID:         "alice",
		IdempotencyKey: "join-alice",
	})
	if !errors.Is(err, domainerrors.ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

func TestMembershipMissedContributionCascades(t *testing.T) {
	h := newMembershipHarness()
	h.seedPool("pool-1", 3, 50)
	h.reputation.Store.SeedTrustScore("alice", 85)
	h.reputation.Store.SeedSuccessfulCycles("alice", 2)
	h.reputation.Store.SeedMembership("pool-1", "alice", 0)

	if _, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", httptransport.JoinPoolRequest{
		UserID:         "alice",
		IdempotencyKey: "join-alice",
	}); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	resp, err := h.membership.Handler.MissedContributionHandler(context.Background(), "pool-1", httptransport.MissedContributionRequest{
		UserID: "alice",
	})
	if err != nil {
		t.Fatalf("missed contribution failed: %v", err)
	}
	if resp.Data.Severity != "missed" {
		t.Fatalf("expected severity missed, got %s", resp.Data.Severity)
	}
	if resp.Data.PreviousScore != 85 || resp.Data.NewScore != 80 {
		t.Fatalf("expected 85 -> 80, got %d -> %d", resp.Data.PreviousScore, resp.Data.NewScore)
	}

	// join event plus the missed contribution event
	if got := h.store.PendingOutboxCount(); got != 2 {
		t.Fatalf("expected 2 pending outbox rows, got %d", got)
	}

	_, err = h.membership.Handler.MissedContributionHandler(context.Background(), "pool-1", httptransport.MissedContributionRequest{
		UserID: "stranger",
	})
	if !errors.Is(err, domainerrors.ErrMembershipNotFound) {
		t.Fatalf("expected ErrMembershipNotFound, got %v", err)
	}
}

func TestMembershipOutboxRelayPublishesPending(t *testing.T) {
	h := newMembershipHarness()
	h.seedPool("pool-1", 2, 50)
	h.reputation.Store.SeedTrustScore("alice", 85)
	h.reputation.Store.SeedSuccessfulCycles("alice", 2)
	h.reputation.Store.SeedTrustScore("bob", 85)
	h.reputation.Store.SeedSuccessfulCycles("bob", 1)

	for _, join := range []httptransport.JoinPoolRequest{
		{UserID: "alice", IdempotencyKey: "join-alice"},
		{UserID: "bob", IdempotencyKey: "join-bob"},
	} {
		if _, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", join); err != nil {
			t.Fatalf("join failed: %v", err)
		}
	}

	publisher := &capturePublisher{}
	relay := workers.OutboxRelay{
		Outbox:    h.store,
		Publisher: publisher,
		Clock:     h.store,
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}

	if got := h.store.PendingOutboxCount(); got != 0 {
		t.Fatalf("expected drained outbox, got %d pending", got)
	}
	topics := map[string]int{}
	for _, topic := range publisher.topics {
		topics[topic]++
	}
	if topics["pool.member_joined"] != 2 || topics["pool.locked"] != 1 {
		t.Fatalf("unexpected published topics: %v", topics)
	}

	// A second cycle with nothing pending is a no-op.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("idle relay cycle failed: %v", err)
	}
	if len(publisher.topics) != 3 {
		t.Fatalf("expected no republishing, got %v", publisher.topics)
	}
}

func TestMembershipGetMembership(t *testing.T) {
	h := newMembershipHarness()
	h.seedPool("pool-1", 3, 50)
	h.reputation.Store.SeedTrustScore("alice", 85)

	if _, err := h.membership.Handler.JoinPoolHandler(context.Background(), "pool-1", httptransport.JoinPoolRequest{
		UserID:         "alice",
		IdempotencyKey: "join-alice",
	}); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	resp, err := h.membership.Handler.GetMembershipHandler(context.Background(), "pool-1", "alice")
	if err != nil {
		t.Fatalf("get membership failed: %v", err)
	}
	if resp.Data.PoolID != "pool-1" || resp.Data.UserID != "alice" {
		t.Fatalf("unexpected membership: %+v", resp.Data)
	}
	if resp.Data.JoinedAt.IsZero() {
		t.Fatalf("expected joined timestamp")
	}

	_, err = h.membership.Handler.GetMembershipHandler(context.Background(), "pool-1", "ghost")
	if !errors.Is(err, domainerrors.ErrMembershipNotFound) {
		t.Fatalf("expected ErrMembershipNotFound, got %v", err)
	}
}
