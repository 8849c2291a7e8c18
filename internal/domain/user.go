package domain

import (
	"context"
	"errors"

	"github.com/hauntpass/backend/internal/domain/statistic"
	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetMyProgress(context.Context, *model.GetMyProgressRequest) (*model.GetMyProgressResponse, error)
}

type userDomain struct {
	userRepo    repository.UserRepository
	leaderboard statistic.Leaderboard
}

func NewUserDomain(userRepo repository.UserRepository, leaderboard statistic.Leaderboard) *userDomain {
	return &userDomain{
		userRepo:    userRepo,
		leaderboard: leaderboard,
	}
}

func (d *userDomain) GetMyProgress(
	ctx context.Context, req *model.GetMyProgressRequest,
) (*model.GetMyProgressResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	rank, err := d.leaderboard.GetRank(ctx, userID, statistic.OrderedByXP, statistic.PeriodTotal)
	if err != nil {
		// The progress is still useful without rank.
		xcontext.Logger(ctx).Warnf("Cannot get xp rank of user %s: %v", userID, err)
		rank = 0
	}

	return &model.GetMyProgressResponse{
		User:        model.ConvertUser(user),
		NextLevelXP: entity.XPForLevel(user.Level + 1),
		XPRank:      rank,
	}, nil
}
