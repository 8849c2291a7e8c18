package entity

import (
	"database/sql"

	"github.com/hauntpass/backend/pkg/enum"
)

type TransactionStatus string

var (
	TransactionStatusPending   = enum.New(TransactionStatus("pending"))
	TransactionStatusConfirmed = enum.New(TransactionStatus("confirmed"))
	TransactionStatusFailed    = enum.New(TransactionStatus("failed"))
)

// TokenTransaction is appended right after a token transfer is submitted.
// RewardKey is the quest id, or DirectRewardKey of the caller's key for a
// direct reward.
type TokenTransaction struct {
	Base

	UserID      string `gorm:"index"`
	RewardKey   string `gorm:"index"`
	Amount      float64
	ToAddress   string
	TxHash      string            `gorm:"index"`
	Status      TransactionStatus `gorm:"index"`
	ConfirmedAt sql.NullTime
	Error       string
}

type NFTTransaction struct {
	Base

	UserID      string `gorm:"index"`
	RewardKey   string `gorm:"index"`
	ToAddress   string
	Contract    string
	TxHash      string `gorm:"index"`
	TokenID     string
	MetadataURI string `gorm:"type:text"`

	// Placeholder is true while TokenID is assumed rather than read from the
	// chain.
	Placeholder bool

	Status      TransactionStatus `gorm:"index"`
	ConfirmedAt sql.NullTime
	Error       string
}
