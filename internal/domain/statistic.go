package domain

import (
	"context"

	"github.com/hauntpass/backend/internal/domain/statistic"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/pkg/enum"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/xcontext"
)

type StatisticDomain interface {
	GetLeaderboard(context.Context, *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
}

type statisticDomain struct {
	leaderboard statistic.Leaderboard
}

func NewStatisticDomain(leaderboard statistic.Leaderboard) *statisticDomain {
	return &statisticDomain{leaderboard: leaderboard}
}

func (d *statisticDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	if req.OrderedBy == "" {
		req.OrderedBy = string(statistic.OrderedByXP)
	}

	if req.Period == "" {
		req.Period = string(statistic.PeriodTotal)
	}

	orderedBy, err := enum.ToEnum[statistic.OrderedBy](req.OrderedBy)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid ordered by: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid ordered by field %s", req.OrderedBy)
	}

	period, err := enum.ToEnum[statistic.Period](req.Period)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid period: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
	}

	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	leaderboard, err := d.leaderboard.GetLeaderboard(ctx, orderedBy, period, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetLeaderboardResponse{Leaderboard: leaderboard}, nil
}
