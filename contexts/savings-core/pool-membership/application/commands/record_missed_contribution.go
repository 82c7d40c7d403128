package commands

import (
	"context"
	"log/slog"
	"strings"

	application "esusu/contexts/savings-core/pool-membership/application"
	domainerrors "esusu/contexts/savings-core/pool-membership/domain/errors"
	"esusu/contexts/savings-core/pool-membership/ports"
)

type RecordMissedContributionCommand struct {
	PoolID    string
	UserID    string
	Abandoned bool
}

type RecordMissedContributionUseCase struct {
	Memberships ports.MembershipRepository
	Reputation  ports.ReputationGateway
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

type RecordMissedContributionResult struct {
	PoolID            string
	UserID            string
	Severity          string
	PreviousScore     int
	NewScore          int
	ReferrerPenalized bool
	MissedPayments    int
}

func (uc RecordMissedContributionUseCase) Execute(
	ctx context.Context,
	cmd RecordMissedContributionCommand,
) (RecordMissedContributionResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	poolID := strings.TrimSpace(cmd.PoolID)
	userID := strings.TrimSpace(cmd.UserID)
	if poolID == "" || userID == "" {
		return RecordMissedContributionResult{}, domainerrors.ErrInvalidInput
	}

	if _, found, err := uc.Memberships.GetMembership(ctx, poolID, userID); err != nil {
		return RecordMissedContributionResult{}, err
	} else if !found {
		return RecordMissedContributionResult{}, domainerrors.ErrMembershipNotFound
	}

	outcome, err := uc.Reputation.RecordDefault(ctx, userID, poolID, cmd.Abandoned)
	if err != nil {
		return RecordMissedContributionResult{}, err
	}

	if uc.Outbox != nil {
		now := uc.Clock.Now().UTC()
		eventID, err := uc.IDGenerator.NewID(ctx)
		if err != nil {
			return RecordMissedContributionResult{}, err
		}
		envelope, err := newMembershipEnvelope(eventID, eventTypeContributionMissed, poolID, now, contributionMissedPayload{
			PoolID:            poolID,
			UserID:            userID,
			Severity:          outcome.Severity,
			PreviousScore:     outcome.PreviousScore,
			NewScore:          outcome.NewScore,
			ReferrerPenalized: outcome.ReferrerPenalized,
			MissedPayments:    outcome.MissedPayments,
		})
		if err != nil {
			return RecordMissedContributionResult{}, err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return RecordMissedContributionResult{}, err
		}
	}

	logger.Info("missed contribution recorded",
		"event", "contribution_missed_recorded",
		"module", "savings-core/pool-membership",
		"layer", "application",
		"pool_id", poolID,
		"user_id", userID,
		"severity", outcome.Severity,
		"new_score", outcome.NewScore,
	)
	return RecordMissedContributionResult{
		PoolID:            poolID,
		UserID:            userID,
		Severity:          outcome.Severity,
		PreviousScore:     outcome.PreviousScore,
		NewScore:          outcome.NewScore,
		ReferrerPenalized: outcome.ReferrerPenalized,
		MissedPayments:    outcome.MissedPayments,
	}, nil
}
