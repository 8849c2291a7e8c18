package domain

import (
	"context"
	"errors"

	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/xcontext"
)

type NotificationDomain interface {
	GetNotifications(context.Context, *model.GetNotificationsRequest) (*model.GetNotificationsResponse, error)
	ReadNotification(context.Context, *model.ReadNotificationRequest) (*model.ReadNotificationResponse, error)
}

type notificationDomain struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationDomain(notificationRepo repository.NotificationRepository) *notificationDomain {
	return &notificationDomain{notificationRepo: notificationRepo}
}

func (d *notificationDomain) GetNotifications(
	ctx context.Context, req *model.GetNotificationsRequest,
) (*model.GetNotificationsResponse, error) {
	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	notifications, err := d.notificationRepo.GetList(ctx, repository.GetNotificationsFilter{
		UserID:     xcontext.RequestUserID(ctx),
		UnreadOnly: req.UnreadOnly,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get notifications: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Notification{}
	for i := range notifications {
		result = append(result, model.ConvertNotification(&notifications[i]))
	}

	return &model.GetNotificationsResponse{Notifications: result}, nil
}

func (d *notificationDomain) ReadNotification(
	ctx context.Context, req *model.ReadNotificationRequest,
) (*model.ReadNotificationResponse, error) {
	if req.ID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require notification id")
	}

	err := d.notificationRepo.MarkRead(ctx, xcontext.RequestUserID(ctx), req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotAffected) {
			return nil, errorx.New(errorx.NotFound, "Not found notification")
		}

		xcontext.Logger(ctx).Errorf("Cannot mark notification %s read: %v", req.ID, err)
		return nil, errorx.Unknown
	}

	return &model.ReadNotificationResponse{}, nil
}
