package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "esusu/contexts/savings-core/payout-sequencer/domain/errors"
	"esusu/contexts/savings-core/payout-sequencer/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) ListMemberships(ctx context.Context, poolID string) ([]ports.Membership, error) {
	var rows []memberModel
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", strings.TrimSpace(poolID)).
		Order("user_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("sequencer_repo_list_memberships_failed", err,
			"pool_id", strings.TrimSpace(poolID),
		)
	}
	items := make([]ports.Membership, 0, len(rows))
	for _, row := range rows {
		item := ports.Membership{
			PoolID: row.PoolID,
			UserID: row.UserID,
		}
		if row.PayoutSlot != nil {
			item.PayoutSlot = *row.PayoutSlot
			item.HasSlot = true
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) ListOccupiedSlots(ctx context.Context, poolID string) ([]int, error) {
	var slots []int
	err := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Where("pool_id = ?", strings.TrimSpace(poolID)).
		Where("payout_slot IS NOT NULL").
		Order("payout_slot ASC").
		Pluck("payout_slot", &slots).
		Error
	if err != nil {
		return nil, r.logError("sequencer_repo_list_occupied_slots_failed", err,
			"pool_id", strings.TrimSpace(poolID),
		)
	}
	return slots, nil
}

func (r *Repository) SavePayoutSlot(ctx context.Context, poolID string, userID string, slot int) error {
	result := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Where("pool_id = ?", strings.TrimSpace(poolID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Updates(map[string]any{
			"payout_slot": slot,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrSlotConflict
		}
		return r.logError("sequencer_repo_save_slot_failed", result.Error,
			"pool_id", strings.TrimSpace(poolID),
			"user_id", strings.TrimSpace(userID),
			"slot", slot,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidInput
	}
	return nil
}

func (r *Repository) ClearPayoutSlots(ctx context.Context, poolID string) error {
	err := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Where("pool_id = ?", strings.TrimSpace(poolID)).
		Updates(map[string]any{
			"payout_slot": nil,
			"updated_at":  time.Now().UTC(),
		}).Error
	if err != nil {
		return r.logError("sequencer_repo_clear_slots_failed", err,
			"pool_id", strings.TrimSpace(poolID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "savings-core/payout-sequencer",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("payout sequencer repository operation failed", fields...)
	return err
}

type memberModel struct {
	PoolID     string    `gorm:"column:pool_id;primaryKey"`
	UserID     string    `gorm:"column:user_id;primaryKey"`
	PayoutSlot *int      `gorm:"column:payout_slot"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (memberModel) TableName() string {
	return "pool_members"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.MembershipRepository = (*Repository)(nil)
