package entity

import (
	"database/sql"
	"strings"
	"time"
)

const directRewardKeyPrefix = "direct:"

// DirectClaim tracks a reward which is not backed by a quest.
type DirectClaim struct {
	UserID    string `gorm:"primaryKey"`
	RewardKey string `gorm:"primaryKey"`
	CreatedAt time.Time

	TokensClaimed bool
	NFTMinted     bool
	XPGranted     bool

	TokenTxHash string
	NFTTxHash   string

	ClaimLeaseUntil sql.NullTime
}

// DirectRewardKey is the reward key of transactions paying a direct reward.
// It never collides with a quest id.
func DirectRewardKey(key string) string {
	return directRewardKeyPrefix + key
}

// ParseDirectRewardKey returns the key of a direct reward from the reward key
// of a transaction.
func ParseDirectRewardKey(rewardKey string) (string, bool) {
	return strings.CutPrefix(rewardKey, directRewardKeyPrefix)
}
