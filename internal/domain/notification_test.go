package domain

import (
	"database/sql"
	"testing"
	"time"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_notificationDomain(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	notificationRepo := repository.NewNotificationRepository()
	domain := NewNotificationDomain(notificationRepo)

	notifications := []*entity.Notification{
		{
			Base:    entity.Base{ID: "n1", CreatedAt: time.Now().Add(-2 * time.Minute)},
			UserID:  testutil.User1.ID,
			Title:   "Reward claimed",
			Message: "You received 25 TPX and 50 XP.",
			Type:    entity.NotificationTypeReward,
		},
		{
			Base:    entity.Base{ID: "n2", CreatedAt: time.Now().Add(-time.Minute)},
			UserID:  testutil.User1.ID,
			Title:   "Level up",
			Message: "You reached level 2 with a bronze passport.",
			Type:    entity.NotificationTypeLevelUp,
		},
		{
			Base:      entity.Base{ID: "n3"},
			UserID:    testutil.User1.ID,
			Title:     "Expired",
			Type:      entity.NotificationTypeInfo,
			ExpiresAt: sql.NullTime{Valid: true, Time: time.Now().Add(-time.Hour)},
		},
		{
			Base:   entity.Base{ID: "n4"},
			UserID: testutil.User2.ID,
			Title:  "Other user",
			Type:   entity.NotificationTypeInfo,
		},
	}
	for _, n := range notifications {
		require.NoError(t, notificationRepo.Create(ctx, n))
	}

	resp, err := domain.GetNotifications(ctx, &model.GetNotificationsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 2)
	require.Equal(t, "n2", resp.Notifications[0].ID)
	require.Equal(t, "level_up", resp.Notifications[0].Type)
	require.Equal(t, "n1", resp.Notifications[1].ID)

	_, err = domain.ReadNotification(ctx, &model.ReadNotificationRequest{ID: "n2"})
	require.NoError(t, err)

	resp, err = domain.GetNotifications(ctx, &model.GetNotificationsRequest{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 1)
	require.Equal(t, "n1", resp.Notifications[0].ID)

	// Notifications of other users cannot be read.
	_, err = domain.ReadNotification(ctx, &model.ReadNotificationRequest{ID: "n4"})
	require.True(t, errorx.Is(err, errorx.NotFound))

	_, err = domain.ReadNotification(ctx, &model.ReadNotificationRequest{})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	resp, err = domain.GetNotifications(xcontext.WithRequestUserID(ctx, testutil.User2.ID), &model.GetNotificationsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 1)
}
