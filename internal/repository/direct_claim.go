package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type DirectClaimRepository interface {
	Upsert(ctx context.Context, userID, rewardKey string) error
	Get(ctx context.Context, userID, rewardKey string) (*entity.DirectClaim, error)
	SetTokensClaimed(ctx context.Context, userID, rewardKey, txHash string) error
	SetNFTMinted(ctx context.Context, userID, rewardKey, txHash string) error
	SetXPGranted(ctx context.Context, userID, rewardKey string) error
	ResetTokensClaimed(ctx context.Context, userID, rewardKey, txHash string) error
	ResetNFTMinted(ctx context.Context, userID, rewardKey, txHash string) error
	AcquireLease(ctx context.Context, userID, rewardKey string, now, until time.Time) error
	ReleaseLease(ctx context.Context, userID, rewardKey string) error
}

type directClaimRepository struct{}

func NewDirectClaimRepository() *directClaimRepository {
	return &directClaimRepository{}
}

// Upsert creates the claim if it does not exist yet.
func (r *directClaimRepository) Upsert(ctx context.Context, userID, rewardKey string) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.DirectClaim{UserID: userID, RewardKey: rewardKey}).Error
}

func (r *directClaimRepository) Get(ctx context.Context, userID, rewardKey string) (*entity.DirectClaim, error) {
	var result entity.DirectClaim
	err := xcontext.DB(ctx).
		Where("user_id=? AND reward_key=?", userID, rewardKey).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *directClaimRepository) SetTokensClaimed(
	ctx context.Context, userID, rewardKey, txHash string,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.DirectClaim{}).
		Where("user_id=? AND reward_key=? AND tokens_claimed=?", userID, rewardKey, false).
		Updates(map[string]any{
			"tokens_claimed": true,
			"token_tx_hash":  txHash,
		})

	return checkSingleRowAffected(tx)
}

func (r *directClaimRepository) SetNFTMinted(
	ctx context.Context, userID, rewardKey, txHash string,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.DirectClaim{}).
		Where("user_id=? AND reward_key=? AND nft_minted=?", userID, rewardKey, false).
		Updates(map[string]any{
			"nft_minted":  true,
			"nft_tx_hash": txHash,
		})

	return checkSingleRowAffected(tx)
}

// ResetTokensClaimed clears the token leg only if it was recorded with txHash.
func (r *directClaimRepository) ResetTokensClaimed(
	ctx context.Context, userID, rewardKey, txHash string,
) error {
	return xcontext.DB(ctx).
		Model(&entity.DirectClaim{}).
		Where("user_id=? AND reward_key=? AND token_tx_hash=?", userID, rewardKey, txHash).
		Updates(map[string]any{
			"tokens_claimed": false,
			"token_tx_hash":  "",
		}).Error
}

func (r *directClaimRepository) ResetNFTMinted(
	ctx context.Context, userID, rewardKey, txHash string,
) error {
	return xcontext.DB(ctx).
		Model(&entity.DirectClaim{}).
		Where("user_id=? AND reward_key=? AND nft_tx_hash=?", userID, rewardKey, txHash).
		Updates(map[string]any{
			"nft_minted":  false,
			"nft_tx_hash": "",
		}).Error
}

func (r *directClaimRepository) SetXPGranted(ctx context.Context, userID, rewardKey string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.DirectClaim{}).
		Where("user_id=? AND reward_key=? AND xp_granted=?", userID, rewardKey, false).
		Update("xp_granted", true)

	return checkSingleRowAffected(tx)
}

func (r *directClaimRepository) AcquireLease(
	ctx context.Context, userID, rewardKey string, now, until time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.DirectClaim{}).
		Where("user_id=? AND reward_key=?", userID, rewardKey).
		Where("claim_lease_until IS NULL OR claim_lease_until<?", now).
		Update("claim_lease_until", sql.NullTime{Valid: true, Time: until})

	return checkSingleRowAffected(tx)
}

func (r *directClaimRepository) ReleaseLease(ctx context.Context, userID, rewardKey string) error {
	return xcontext.DB(ctx).
		Model(&entity.DirectClaim{}).
		Where("user_id=? AND reward_key=?", userID, rewardKey).
		Update("claim_lease_until", sql.NullTime{}).Error
}
