package migration

import (
	"context"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/xcontext"
)

// migrate0003 moves direct reward legs from their transaction records onto
// the direct claim, prefixes the reward key of those transactions, and counts
// every completion whose xp was granted as counted.
func migrate0003(ctx context.Context) error {
	db := xcontext.DB(ctx)
	if err := db.AutoMigrate(&entity.QuestCompletion{}, &entity.DirectClaim{}); err != nil {
		return err
	}

	err := db.Model(&entity.QuestCompletion{}).
		Where("xp_granted=?", true).
		Update("quest_counted", true).Error
	if err != nil {
		return err
	}

	for offset := 0; ; offset += backfillBatchSize {
		var claims []entity.DirectClaim
		err := db.Order("user_id, reward_key").
			Offset(offset).
			Limit(backfillBatchSize).
			Find(&claims).Error
		if err != nil {
			return err
		}

		for _, c := range claims {
			if err := backfillDirectClaim(ctx, c); err != nil {
				return err
			}
		}

		if len(claims) < backfillBatchSize {
			return nil
		}
	}
}

func backfillDirectClaim(ctx context.Context, c entity.DirectClaim) error {
	db := xcontext.DB(ctx)
	updates := map[string]any{}

	var tokenTx entity.TokenTransaction
	err := db.Where("user_id=? AND reward_key=? AND status<>?",
		c.UserID, c.RewardKey, entity.TransactionStatusFailed).
		Order("created_at DESC").
		Limit(1).
		Find(&tokenTx).Error
	if err != nil {
		return err
	}
	if tokenTx.TxHash != "" {
		updates["tokens_claimed"] = true
		updates["token_tx_hash"] = tokenTx.TxHash
	}

	var nftTx entity.NFTTransaction
	err = db.Where("user_id=? AND reward_key=? AND status<>?",
		c.UserID, c.RewardKey, entity.TransactionStatusFailed).
		Order("created_at DESC").
		Limit(1).
		Find(&nftTx).Error
	if err != nil {
		return err
	}
	if nftTx.TxHash != "" {
		updates["nft_minted"] = true
		updates["nft_tx_hash"] = nftTx.TxHash
	}

	if len(updates) > 0 {
		err := db.Model(&entity.DirectClaim{}).
			Where("user_id=? AND reward_key=?", c.UserID, c.RewardKey).
			Updates(updates).Error
		if err != nil {
			return err
		}
	}

	rewardKey := entity.DirectRewardKey(c.RewardKey)
	err = db.Model(&entity.TokenTransaction{}).
		Where("user_id=? AND reward_key=?", c.UserID, c.RewardKey).
		Update("reward_key", rewardKey).Error
	if err != nil {
		return err
	}

	return db.Model(&entity.NFTTransaction{}).
		Where("user_id=? AND reward_key=?", c.UserID, c.RewardKey).
		Update("reward_key", rewardKey).Error
}
