package domain

import (
	"context"
	"testing"

	"github.com/hauntpass/backend/internal/domain/statistic"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func Test_statisticDomain_GetLeaderboard(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var gotKey string
	domain := NewStatisticDomain(statistic.New(repository.NewUserRepository(), &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			return true, nil
		},
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			gotKey = key
			require.Equal(t, 0, offset)
			require.Equal(t, 2, limit)
			return []redis.Z{{Member: "user2", Score: 80}, {Member: "user1", Score: 30}}, nil
		},
	}))

	resp, err := domain.GetLeaderboard(ctx, &model.GetLeaderboardRequest{
		OrderedBy: "tpx",
		Period:    "total",
		Limit:     2,
	})
	require.NoError(t, err)
	require.Equal(t, "leaderboard:tpx:total:0/0", gotKey)
	require.Equal(t, &model.GetLeaderboardResponse{
		Leaderboard: []model.UserStatistic{
			{
				User:        model.User{ID: testutil.User2.ID, Name: testutil.User2.Name, Level: 1, PassportTier: "bronze"},
				Value:       80,
				CurrentRank: 1,
			},
			{
				User:        model.User{ID: testutil.User1.ID, Name: testutil.User1.Name, Level: 1, PassportTier: "bronze"},
				Value:       30,
				CurrentRank: 2,
			},
		},
	}, resp)

	// Defaults to the total xp board.
	_, err = domain.GetLeaderboard(ctx, &model.GetLeaderboardRequest{})
	require.NoError(t, err)
	require.Equal(t, "leaderboard:xp:total:0/0", gotKey)
}

func Test_statisticDomain_GetLeaderboard_InvalidRequest(t *testing.T) {
	ctx := testutil.MockContext()
	domain := NewStatisticDomain(statistic.New(repository.NewUserRepository(), &testutil.MockRedisClient{}))

	tests := []struct {
		name string
		req  *model.GetLeaderboardRequest
	}{
		{name: "ordered by", req: &model.GetLeaderboardRequest{OrderedBy: "candy"}},
		{name: "period", req: &model.GetLeaderboardRequest{Period: "year"}},
		{name: "limit", req: &model.GetLeaderboardRequest{Limit: 51}},
		{name: "offset", req: &model.GetLeaderboardRequest{Offset: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.GetLeaderboard(ctx, tt.req)
			require.True(t, errorx.Is(err, errorx.BadRequest))
		})
	}
}
