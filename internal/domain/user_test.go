package domain

import (
	"context"
	"testing"

	"github.com/hauntpass/backend/internal/domain/statistic"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_userDomain_GetMyProgress(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	userRepo := repository.NewUserRepository()
	require.NoError(t, userRepo.IncreaseProgress(ctx, testutil.User1.ID, repository.ProgressDelta{
		XP: 450, TokensEarned: 75, TokensClaimed: 75, QuestCompleted: true,
	}))
	require.NoError(t, userRepo.UpdateLevel(ctx, testutil.User1.ID, 450, 3, "bronze"))

	domain := NewUserDomain(userRepo, statistic.New(userRepo, &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			return true, nil
		},
		ZRevRankFunc: func(ctx context.Context, key, member string) (uint64, error) {
			require.Equal(t, "leaderboard:xp:total:0/0", key)
			return 1, nil
		},
	}))

	resp, err := domain.GetMyProgress(ctx, &model.GetMyProgressRequest{})
	require.NoError(t, err)
	require.Equal(t, &model.GetMyProgressResponse{
		User: model.User{
			ID:                 testutil.User1.ID,
			Name:               testutil.User1.Name,
			WalletAddress:      testutil.Wallet1,
			TotalXP:            450,
			Level:              3,
			TotalTokensEarned:  75,
			TotalTokensClaimed: 75,
			QuestsCompleted:    1,
			PassportTier:       "bronze",
		},
		NextLevelXP: 900,
		XPRank:      2,
	}, resp)

	_, err = domain.GetMyProgress(xcontext.WithRequestUserID(ctx, "ghost"), &model.GetMyProgressRequest{})
	require.True(t, errorx.Is(err, errorx.NotFound))
}
