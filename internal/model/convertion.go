package model

import (
	"time"

	"github.com/hauntpass/backend/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func ConvertUser(user *entity.User) User {
	if user == nil {
		return User{}
	}

	return User{
		ID:                 user.ID,
		Name:               user.Name,
		WalletAddress:      user.WalletAddress.String,
		TotalXP:            user.TotalXP,
		Level:              user.Level,
		TotalTokensEarned:  user.TotalTokensEarned,
		TotalTokensClaimed: user.TotalTokensClaimed,
		QuestsCompleted:    user.QuestsCompleted,
		PassportTier:       string(user.PassportTier),
	}
}

func ConvertShortUser(user *entity.User) User {
	if user == nil {
		return User{}
	}

	return User{
		ID:           user.ID,
		Name:         user.Name,
		Level:        user.Level,
		PassportTier: string(user.PassportTier),
	}
}

func ConvertNotification(n *entity.Notification) Notification {
	expiresAt := ""
	if n.ExpiresAt.Valid {
		expiresAt = n.ExpiresAt.Time.Format(DefaultTimeLayout)
	}

	return Notification{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(DefaultTimeLayout),
		ExpiresAt: expiresAt,
	}
}

func ConvertNFTAttributes(attrs entity.Array[entity.NFTAttribute]) []NFTAttribute {
	result := []NFTAttribute{}
	for _, a := range attrs {
		result = append(result, NFTAttribute{TraitType: a.TraitType, Value: a.Value})
	}

	return result
}
