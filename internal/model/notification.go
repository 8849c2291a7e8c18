package model

type GetNotificationsRequest struct {
	UnreadOnly bool `form:"unread_only"`
	Offset     int  `form:"offset"`
	Limit      int  `form:"limit"`
}

type GetNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

type ReadNotificationRequest struct {
	ID string `json:"id"`
}

type ReadNotificationResponse struct{}
