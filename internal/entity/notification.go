package entity

import (
	"database/sql"

	"github.com/hauntpass/backend/pkg/enum"
)

type NotificationType string

var (
	NotificationTypeReward  = enum.New(NotificationType("reward"))
	NotificationTypeNFT     = enum.New(NotificationType("nft"))
	NotificationTypeLevelUp = enum.New(NotificationType("level_up"))
	NotificationTypeInfo    = enum.New(NotificationType("info"))
)

type Notification struct {
	Base

	UserID    string `gorm:"index"`
	Title     string
	Message   string
	Type      NotificationType
	IsRead    bool
	ExpiresAt sql.NullTime
}
