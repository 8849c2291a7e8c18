package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// ErrNotAffected is returned by conditional updates whose condition did not
// hold, e.g. the flag was already set.
var ErrNotAffected = errors.New("no row matched the update condition")

type QuestCompletionRepository interface {
	Create(ctx context.Context, completion *entity.QuestCompletion) error
	Get(ctx context.Context, userID, questID string) (*entity.QuestCompletion, error)
	SetTokensClaimed(ctx context.Context, userID, questID, txHash string) error
	SetNFTMinted(ctx context.Context, userID, questID, tokenID, txHash string) error
	SetXPGranted(ctx context.Context, userID, questID string) error
	SetQuestCounted(ctx context.Context, userID, questID string) error
	UpdateNFTTokenID(ctx context.Context, userID, questID, txHash, tokenID string) error
	ResetTokensClaimed(ctx context.Context, userID, questID, txHash string) error
	ResetNFTMinted(ctx context.Context, userID, questID, txHash string) error
	MarkClaimed(ctx context.Context, userID, questID string, claimedAt time.Time) error
	AcquireLease(ctx context.Context, userID, questID string, now, until time.Time) error
	ReleaseLease(ctx context.Context, userID, questID string) error
}

type questCompletionRepository struct{}

func NewQuestCompletionRepository() *questCompletionRepository {
	return &questCompletionRepository{}
}

func (r *questCompletionRepository) Create(ctx context.Context, completion *entity.QuestCompletion) error {
	return xcontext.DB(ctx).Create(completion).Error
}

func (r *questCompletionRepository) Get(
	ctx context.Context, userID, questID string,
) (*entity.QuestCompletion, error) {
	var result entity.QuestCompletion
	err := xcontext.DB(ctx).
		Where("user_id=? AND quest_id=?", userID, questID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questCompletionRepository) SetTokensClaimed(
	ctx context.Context, userID, questID, txHash string,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id=? AND quest_id=? AND tokens_claimed=?", userID, questID, false).
		Updates(map[string]any{
			"tokens_claimed": true,
			"token_tx_hash":  txHash,
		})

	return checkSingleRowAffected(tx)
}

func (r *questCompletionRepository) SetNFTMinted(
	ctx context.Context, userID, questID, tokenID, txHash string,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id=? AND quest_id=? AND nft_minted=?", userID, questID, false).
		Updates(map[string]any{
			"nft_minted":   true,
			"nft_token_id": tokenID,
			"nft_tx_hash":  txHash,
		})

	return checkSingleRowAffected(tx)
}

func (r *questCompletionRepository) SetXPGranted(ctx context.Context, userID, questID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id=? AND quest_id=? AND xp_granted=?", userID, questID, false).
		Update("xp_granted", true)

	return checkSingleRowAffected(tx)
}

func (r *questCompletionRepository) SetQuestCounted(ctx context.Context, userID, questID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id=? AND quest_id=? AND quest_counted=?", userID, questID, false).
		Update("quest_counted", true)

	return checkSingleRowAffected(tx)
}

// UpdateNFTTokenID replaces the token id recorded with the mint txHash.
func (r *questCompletionRepository) UpdateNFTTokenID(
	ctx context.Context, userID, questID, txHash, tokenID string,
) error {
	return xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id=? AND quest_id=? AND nft_tx_hash=?", userID, questID, txHash).
		Update("nft_token_id", tokenID).Error
}

// ResetTokensClaimed clears the token leg recorded with txHash, so the leg can
// be claimed again. A claimed completion goes back to verified.
func (r *questCompletionRepository) ResetTokensClaimed(
	ctx context.Context, userID, questID, txHash string,
) error {
	return xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id=? AND quest_id=? AND token_tx_hash=?", userID, questID, txHash).
		Updates(map[string]any{
			"tokens_claimed": false,
			"token_tx_hash":  "",
			"status":         gorm.Expr("CASE WHEN status=? THEN ? ELSE status END", entity.QuestCompletionClaimed, entity.QuestCompletionVerified),
			"claimed_at":     sql.NullTime{},
		}).Error
}

func (r *questCompletionRepository) ResetNFTMinted(
	ctx context.Context, userID, questID, txHash string,
) error {
	return xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id=? AND quest_id=? AND nft_tx_hash=?", userID, questID, txHash).
		Updates(map[string]any{
			"nft_minted":   false,
			"nft_token_id": "",
			"nft_tx_hash":  "",
			"status":       gorm.Expr("CASE WHEN status=? THEN ? ELSE status END", entity.QuestCompletionClaimed, entity.QuestCompletionVerified),
			"claimed_at":   sql.NullTime{},
		}).Error
}

func (r *questCompletionRepository) MarkClaimed(
	ctx context.Context, userID, questID string, claimedAt time.Time,
) error {
	return xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id=? AND quest_id=? AND status<>?", userID, questID, entity.QuestCompletionClaimed).
		Updates(map[string]any{
			"status":     entity.QuestCompletionClaimed,
			"claimed_at": sql.NullTime{Valid: true, Time: claimedAt},
		}).Error
}

// AcquireLease succeeds only when no other claim holds an unexpired lease.
func (r *questCompletionRepository) AcquireLease(
	ctx context.Context, userID, questID string, now, until time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id=? AND quest_id=?", userID, questID).
		Where("claim_lease_until IS NULL OR claim_lease_until<?", now).
		Update("claim_lease_until", sql.NullTime{Valid: true, Time: until})

	return checkSingleRowAffected(tx)
}

func (r *questCompletionRepository) ReleaseLease(ctx context.Context, userID, questID string) error {
	return xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id=? AND quest_id=?", userID, questID).
		Update("claim_lease_until", sql.NullTime{}).Error
}

func checkSingleRowAffected(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return ErrNotAffected
	}

	return nil
}
