package repository

import (
	"context"
	"time"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/xcontext"
)

type GetNotificationsFilter struct {
	UserID     string
	UnreadOnly bool
	Offset     int
	Limit      int
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetList(ctx context.Context, filter GetNotificationsFilter) ([]entity.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

type notificationRepository struct{}

func NewNotificationRepository() *notificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return xcontext.DB(ctx).Create(notification).Error
}

func (r *notificationRepository) GetList(
	ctx context.Context, filter GetNotificationsFilter,
) ([]entity.Notification, error) {
	var result []entity.Notification
	tx := xcontext.DB(ctx).
		Where("user_id=?", filter.UserID).
		Where("expires_at IS NULL OR expires_at>?", time.Now()).
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit)

	if filter.UnreadOnly {
		tx = tx.Where("is_read=?", false)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Notification{}).
		Where("id=? AND user_id=?", id, userID).
		Update("is_read", true)

	return checkSingleRowAffected(tx)
}
