package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"esusu/contexts/savings-core/pool-lifecycle/domain/entities"
	domainerrors "esusu/contexts/savings-core/pool-lifecycle/domain/errors"
	"esusu/contexts/savings-core/pool-lifecycle/ports"

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

func (r *Repository) GetPool(ctx context.Context, poolID string) (entities.Pool, error) {
	var row poolModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(poolID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Pool{}, domainerrors.ErrPoolNotFound
		}
		return entities.Pool{}, r.logError("lifecycle_repo_get_pool_failed", err,
			"pool_id", strings.TrimSpace(poolID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdatePoolStatus(
	ctx context.Context,
	poolID string,
	from entities.PoolStatus,
	to entities.PoolStatus,
	updatedAt time.Time,
) error {
	result := r.db.WithContext(ctx).
		Model(&poolModel{}).
		Where("id = ?", strings.TrimSpace(poolID)).
		Where("status = ?", string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("lifecycle_repo_update_status_failed", result.Error,
			"pool_id", strings.TrimSpace(poolID),
			"from", string(from),
			"to", string(to),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrStatusChanged
	}
	return nil
}

func (r *Repository) ListCompletablePools(ctx context.Context, limit int) ([]entities.Pool, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []poolModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.PoolStatusActive)).
		Where("current_cycle >= total_cycles").
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("lifecycle_repo_list_completable_failed", err, "limit", limit)
	}
	return toPoolEntities(rows), nil
}

func (r *Repository) ListExpiredFillingPools(ctx context.Context, now time.Time, limit int) ([]entities.Pool, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []poolModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.PoolStatusFilling)).
		Where("join_deadline IS NOT NULL AND join_deadline < ?", now.UTC()).
		Order("join_deadline ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("lifecycle_repo_list_expired_filling_failed", err, "limit", limit)
	}
	return toPoolEntities(rows), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "savings-core/pool-lifecycle",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("pool lifecycle repository operation failed", fields...)
	return err
}

type poolModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	Status         string     `gorm:"column:status"`
	Capacity       int        `gorm:"column:capacity"`
	CurrentMembers int        `gorm:"column:current_members"`
	CurrentCycle   int        `gorm:"column:current_cycle"`
	TotalCycles    int        `gorm:"column:total_cycles"`
	StartDate      *time.Time `gorm:"column:start_date"`
	JoinDeadline   *time.Time `gorm:"column:join_deadline"`
	Amount         float64    `gorm:"column:amount"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (poolModel) TableName() string {
	return "pools"
}

func (m poolModel) toEntity() entities.Pool {
	return entities.Pool{
		PoolID:         m.ID,
		Status:         entities.PoolStatus(m.Status),
		Capacity:       m.Capacity,
		CurrentMembers: m.CurrentMembers,
		CurrentCycle:   m.CurrentCycle,
		TotalCycles:    m.TotalCycles,
		StartDate:      normalizeOptionalTime(m.StartDate),
		JoinDeadline:   normalizeOptionalTime(m.JoinDeadline),
		Amount:         m.Amount,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func toPoolEntities(rows []poolModel) []entities.Pool {
	items := make([]entities.Pool, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

var _ ports.Repository = (*Repository)(nil)
