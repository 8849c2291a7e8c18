package repository

import (
	"context"
	"database/sql"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ProgressDelta struct {
	XP             int64
	TokensEarned   float64
	TokensClaimed  float64
	QuestCompleted bool
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	GetWithProgress(ctx context.Context, offset, limit int) ([]entity.User, error)
	UpdateWalletAddress(ctx context.Context, id, address string) error
	IncreaseProgress(ctx context.Context, id string, delta ProgressDelta) error
	UpdateLevel(ctx context.Context, id string, expectedXP int64, level int, tier entity.PassportTier) error
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return xcontext.DB(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	var result []entity.User
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// GetWithProgress pages through users which earned any XP or token.
func (r *userRepository) GetWithProgress(ctx context.Context, offset, limit int) ([]entity.User, error) {
	var result []entity.User
	err := xcontext.DB(ctx).
		Where("total_xp>0 OR total_tokens_earned>0").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) UpdateWalletAddress(ctx context.Context, id, address string) error {
	return xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=?", id).
		Update("wallet_address", sql.NullString{Valid: true, String: address}).Error
}

// IncreaseProgress applies every counter as a relative SQL increment, so
// concurrent callers never lose an update.
func (r *userRepository) IncreaseProgress(ctx context.Context, id string, delta ProgressDelta) error {
	updateMap := map[string]any{
		"total_xp":             gorm.Expr("total_xp+?", delta.XP),
		"total_tokens_earned":  gorm.Expr("total_tokens_earned+?", delta.TokensEarned),
		"total_tokens_claimed": gorm.Expr("total_tokens_claimed+?", delta.TokensClaimed),
	}

	if delta.QuestCompleted {
		updateMap["quests_completed"] = gorm.Expr("quests_completed+1")
	}

	tx := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=?", id).
		Updates(updateMap)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpdateLevel writes level and tier only if total_xp still equals expectedXP.
func (r *userRepository) UpdateLevel(
	ctx context.Context, id string, expectedXP int64, level int, tier entity.PassportTier,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=? AND total_xp=?", id, expectedXP).
		Updates(map[string]any{
			"level":         level,
			"passport_tier": tier,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrNotAffected
	}

	return nil
}
