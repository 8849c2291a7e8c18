package statistic

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// newSortedSetRedis returns a redis mock backed by in-memory sorted sets.
func newSortedSetRedis() (*testutil.MockRedisClient, map[string]map[string]float64) {
	sets := map[string]map[string]float64{}
	get := func(key string) map[string]float64 {
		if _, ok := sets[key]; !ok {
			sets[key] = map[string]float64{}
		}
		return sets[key]
	}

	sorted := func(key string) []redis.Z {
		result := []redis.Z{}
		for member, score := range sets[key] {
			result = append(result, redis.Z{Member: member, Score: score})
		}
		sort.Slice(result, func(i, j int) bool {
			if result[i].Score == result[j].Score {
				return result[i].Member.(string) > result[j].Member.(string)
			}
			return result[i].Score > result[j].Score
		})
		return result
	}

	return &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			_, ok := sets[key]
			return ok, nil
		},
		ZAddFunc: func(ctx context.Context, key string, z redis.Z) error {
			get(key)[z.Member.(string)] = z.Score
			return nil
		},
		ZIncrByFunc: func(ctx context.Context, key string, incr float64, member string) error {
			get(key)[member] += incr
			return nil
		},
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			all := sorted(key)
			if offset >= len(all) {
				return nil, nil
			}
			end := offset + limit
			if end > len(all) {
				end = len(all)
			}
			return all[offset:end], nil
		},
		ZRevRankFunc: func(ctx context.Context, key, member string) (uint64, error) {
			for i, z := range sorted(key) {
				if z.Member == member {
					return uint64(i), nil
				}
			}
			return 0, redis.Nil
		},
	}, sets
}

func Test_leaderboard_WeekAndMonth(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	redisClient, _ := newSortedSetRedis()
	l := New(repository.NewUserRepository(), redisClient)

	now := time.Now()
	require.NoError(t, l.Change(ctx, testutil.User1.ID, 100, 50, now))
	require.NoError(t, l.Change(ctx, testutil.User2.ID, 300, 10, now))
	require.NoError(t, l.Change(ctx, testutil.User1.ID, 50, 0, now))

	board, err := l.GetLeaderboard(ctx, OrderedByXP, PeriodWeek, 0, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, testutil.User2.ID, board[0].User.ID)
	require.Equal(t, float64(300), board[0].Value)
	require.Equal(t, 1, board[0].CurrentRank)
	require.Equal(t, testutil.User1.ID, board[1].User.ID)
	require.Equal(t, float64(150), board[1].Value)
	require.Equal(t, 2, board[1].CurrentRank)

	board, err = l.GetLeaderboard(ctx, OrderedByTPX, PeriodMonth, 0, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, testutil.User1.ID, board[0].User.ID)

	rank, err := l.GetRank(ctx, testutil.User1.ID, OrderedByXP, PeriodMonth)
	require.NoError(t, err)
	require.Equal(t, uint64(2), rank)

	rank, err = l.GetRank(ctx, "unknown", OrderedByXP, PeriodMonth)
	require.NoError(t, err)
	require.Equal(t, uint64(0), rank)
}

func Test_leaderboard_TotalLoadsFromDatabase(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	userRepo := repository.NewUserRepository()
	require.NoError(t, userRepo.IncreaseProgress(ctx, testutil.User1.ID, repository.ProgressDelta{XP: 500, TokensEarned: 20}))
	require.NoError(t, userRepo.IncreaseProgress(ctx, testutil.User2.ID, repository.ProgressDelta{XP: 200, TokensEarned: 80}))

	redisClient, sets := newSortedSetRedis()
	l := New(userRepo, redisClient)

	// The total board does not exist yet, so this change is not applied twice.
	require.NoError(t, l.Change(ctx, testutil.User1.ID, 500, 20, time.Now()))
	require.Empty(t, sets[redisKeyLeaderboard(OrderedByXP, PeriodTotal, time.Now())])

	board, err := l.GetLeaderboard(ctx, OrderedByXP, PeriodTotal, 0, 10)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, testutil.User1.ID, board[0].User.ID)
	require.Equal(t, float64(500), board[0].Value)
	require.Equal(t, testutil.User1.Name, board[0].User.Name)

	// Once loaded, the total board follows changes.
	require.NoError(t, l.Change(ctx, testutil.User2.ID, 400, 0, time.Now()))
	rank, err := l.GetRank(ctx, testutil.User2.ID, OrderedByXP, PeriodTotal)
	require.NoError(t, err)
	require.Equal(t, uint64(1), rank)
}
