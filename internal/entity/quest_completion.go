package entity

import (
	"database/sql"

	"github.com/hauntpass/backend/pkg/enum"
)

type QuestCompletionStatus string

var (
	QuestCompletionPending   = enum.New(QuestCompletionStatus("pending"))
	QuestCompletionCompleted = enum.New(QuestCompletionStatus("completed"))
	QuestCompletionVerified  = enum.New(QuestCompletionStatus("verified"))
	QuestCompletionClaimed   = enum.New(QuestCompletionStatus("claimed"))
)

type QuestCompletion struct {
	Base

	UserID string `gorm:"uniqueIndex:idx_quest_completions_user_id_quest_id"`
	User   User   `gorm:"foreignKey:UserID"`

	QuestID string `gorm:"uniqueIndex:idx_quest_completions_user_id_quest_id"`
	Quest   Quest  `gorm:"foreignKey:QuestID"`

	Status      QuestCompletionStatus
	ProofURL    string
	CompletedAt sql.NullTime
	ClaimedAt   sql.NullTime

	TokensClaimed bool
	NFTMinted     bool
	XPGranted     bool

	// QuestCounted is set once the completion was added to quests_completed.
	QuestCounted bool

	TokenTxHash string
	NFTTxHash   string
	NFTTokenID  string

	ClaimLeaseUntil sql.NullTime
}

// IsClaimable reports whether the completion has passed proof review.
func (c QuestCompletion) IsClaimable() bool {
	return c.Status == QuestCompletionCompleted ||
		c.Status == QuestCompletionVerified ||
		c.Status == QuestCompletionClaimed
}
