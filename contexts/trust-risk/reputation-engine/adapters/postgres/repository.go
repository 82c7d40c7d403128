package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "esusu/contexts/trust-risk/reputation-engine/domain/errors"
	"esusu/contexts/trust-risk/reputation-engine/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

func (r *Repository) GetTrustScore(ctx context.Context, userID string) (int, bool, error) {
	var row profileModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, r.logError("reputation_repo_get_trust_score_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.TrustScore, true, nil
}

func (r *Repository) SaveTrustScore(ctx context.Context, userID string, score int) error {
	now := time.Now().UTC()
	row := profileModel{
		UserID:     strings.TrimSpace(userID),
		TrustScore: score,
		UpdatedAt:  now,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"trust_score": row.TrustScore,
			"updated_at":  row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("reputation_repo_save_trust_score_failed", create.Error,
			"user_id", row.UserID,
			"score", score,
		)
	}
	return nil
}

func (r *Repository) ListTrustScores(ctx context.Context) ([]ports.ProfileScore, error) {
	var rows []profileModel
	if err := r.db.WithContext(ctx).
		Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("reputation_repo_list_trust_scores_failed", err)
	}
	items := make([]ports.ProfileScore, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.ProfileScore{UserID: row.UserID, Score: row.TrustScore})
	}
	return items, nil
}

func (r *Repository) CountSuccessfulCycles(ctx context.Context, userID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("pool_members AS m").
		Joins("JOIN pools AS p ON p.id = m.pool_id").
		Where("m.user_id = ?", strings.TrimSpace(userID)).
		Where("p.status = ?", "completed").
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("reputation_repo_count_successful_cycles_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return int(count), nil
}

func (r *Repository) CountMissedPayments(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Select("COALESCE(SUM(missed_payments), 0)").
		Where("user_id = ?", strings.TrimSpace(userID)).
		Scan(&total).
		Error
	if err != nil {
		return 0, r.logError("reputation_repo_count_missed_payments_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return total, nil
}

func (r *Repository) GetPoolMissedPayments(ctx context.Context, poolID string, userID string) (int, error) {
	var row memberModel
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", strings.TrimSpace(poolID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domainerrors.ErrMembershipNotFound
		}
		return 0, r.logError("reputation_repo_get_pool_missed_failed", err,
			"pool_id", strings.TrimSpace(poolID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.MissedPayments, nil
}

func (r *Repository) IncrementPoolMissedPayments(ctx context.Context, poolID string, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Where("pool_id = ?", strings.TrimSpace(poolID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Updates(map[string]any{
			"missed_payments": gorm.Expr("missed_payments + 1"),
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return r.logError("reputation_repo_increment_missed_failed", result.Error,
			"pool_id", strings.TrimSpace(poolID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMembershipNotFound
	}
	return nil
}

func (r *Repository) GetRewardedReferral(ctx context.Context, referredUserID string) (ports.Referral, bool, error) {
	var row referralModel
	err := r.db.WithContext(ctx).
		Where("referred_user_id = ?", strings.TrimSpace(referredUserID)).
		Where("status = ?", ports.ReferralStatusRewarded).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Referral{}, false, nil
		}
		return ports.Referral{}, false, r.logError("reputation_repo_get_referral_failed", err,
			"referred_user_id", strings.TrimSpace(referredUserID),
		)
	}
	return ports.Referral{
		ReferrerID:     row.ReferrerID,
		ReferredUserID: row.ReferredUserID,
		Status:         row.Status,
	}, true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "trust-risk/reputation-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("reputation repository operation failed", fields...)
	return err
}

type profileModel struct {
	UserID     string    `gorm:"column:user_id;primaryKey"`
	TrustScore int       `gorm:"column:trust_score"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (profileModel) TableName() string {
	return "profiles"
}

type memberModel struct {
	PoolID         string    `gorm:"column:pool_id;primaryKey"`
	UserID         string    `gorm:"column:user_id;primaryKey"`
	MissedPayments int       `gorm:"column:missed_payments"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (memberModel) TableName() string {
	return "pool_members"
}

type referralModel struct {
	ReferrerID     string `gorm:"column:referrer_id"`
	ReferredUserID string `gorm:"column:referred_user_id"`
	Status         string `gorm:"column:status"`
}

func (referralModel) TableName() string {
	return "referrals"
}

var _ ports.ProfileRepository = (*Repository)(nil)
var _ ports.MembershipHistoryRepository = (*Repository)(nil)
var _ ports.ReferralRepository = (*Repository)(nil)
