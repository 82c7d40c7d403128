package queries

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "esusu/contexts/savings-core/pool-membership/domain/errors"
	"esusu/contexts/savings-core/pool-membership/ports"
)

type GetMembershipUseCase struct {
	Memberships ports.MembershipRepository
	Logger      *slog.Logger
}

func (uc GetMembershipUseCase) Execute(ctx context.Context, poolID string, userID string) (ports.PoolMember, error) {
	poolID = strings.TrimSpace(poolID)
	userID = strings.TrimSpace(userID)
	if poolID == "" || userID == "" {
		return ports.PoolMember{}, domainerrors.ErrInvalidInput
	}

	member, found, err := uc.Memberships.GetMembership(ctx, poolID, userID)
	if err != nil {
		return ports.PoolMember{}, err
	}
	if !found {
		return ports.PoolMember{}, domainerrors.ErrMembershipNotFound
	}
	return member, nil
}
