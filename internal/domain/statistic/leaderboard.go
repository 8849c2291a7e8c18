package statistic

import (
	"context"
	"errors"
	"time"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/hauntpass/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

const (
	loadBatchSize = 500

	// Closed week and month boards stay readable for a while after they end.
	closedPeriodRetention = 30 * 24 * time.Hour
)

type Leaderboard interface {
	Change(ctx context.Context, userID string, xp int64, tpx float64, at time.Time) error
	GetLeaderboard(
		ctx context.Context, orderedBy OrderedBy, period Period, offset, limit int,
	) ([]model.UserStatistic, error)
	GetRank(ctx context.Context, userID string, orderedBy OrderedBy, period Period) (uint64, error)
}

type leaderboard struct {
	userRepo    repository.UserRepository
	redisClient xredis.Client
}

func New(userRepo repository.UserRepository, redisClient xredis.Client) *leaderboard {
	return &leaderboard{userRepo: userRepo, redisClient: redisClient}
}

func (l *leaderboard) GetLeaderboard(
	ctx context.Context, orderedBy OrderedBy, period Period, offset, limit int,
) ([]model.UserStatistic, error) {
	key := redisKeyLeaderboard(orderedBy, period, time.Now())
	if err := l.ensureLoaded(ctx, key, period); err != nil {
		return nil, err
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, key, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	userIDs := []string{}
	for _, z := range results {
		if id, ok := z.Member.(string); ok {
			userIDs = append(userIDs, id)
		}
	}

	userMap := map[string]entity.User{}
	if len(userIDs) > 0 {
		users, err := l.userRepo.GetByIDs(ctx, userIDs)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get users of leaderboard: %v", err)
			return nil, errorx.Unknown
		}

		for _, u := range users {
			userMap[u.ID] = u
		}
	}

	leaderboard := []model.UserStatistic{}
	for i, z := range results {
		id, _ := z.Member.(string)
		user, ok := userMap[id]
		if !ok {
			user = entity.User{Base: entity.Base{ID: id}}
		}

		leaderboard = append(leaderboard, model.UserStatistic{
			User:        model.ConvertShortUser(&user),
			Value:       z.Score,
			CurrentRank: offset + i + 1,
		})
	}

	return leaderboard, nil
}

// GetRank returns the 1-based rank of the user, or 0 if the user is not on
// the board.
func (l *leaderboard) GetRank(
	ctx context.Context, userID string, orderedBy OrderedBy, period Period,
) (uint64, error) {
	key := redisKeyLeaderboard(orderedBy, period, time.Now())
	if err := l.ensureLoaded(ctx, key, period); err != nil {
		return 0, err
	}

	rank, err := l.redisClient.ZRevRank(ctx, key, userID)
	if err != nil {
		if errors.Is(err, xredis.ErrNotFound) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get rev rank redis: %v", err)
		return 0, errorx.Unknown
	}

	return rank + 1, nil
}

// Change adds the granted XP and TPX to every period board containing at.
func (l *leaderboard) Change(ctx context.Context, userID string, xp int64, tpx float64, at time.Time) error {
	for _, period := range AllPeriods {
		if xp != 0 {
			if err := l.change(ctx, userID, OrderedByXP, period, float64(xp), at); err != nil {
				return err
			}
		}

		if tpx != 0 {
			if err := l.change(ctx, userID, OrderedByTPX, period, tpx, at); err != nil {
				return err
			}
		}
	}

	return nil
}

func (l *leaderboard) change(
	ctx context.Context, userID string, orderedBy OrderedBy, period Period, value float64, at time.Time,
) error {
	key := redisKeyLeaderboard(orderedBy, period, at)

	end, closes := periodEnd(period, at)
	if !closes {
		// The total board is rebuilt from the database when missing, so it is
		// only incremented once it exists.
		ok, err := l.redisClient.Exist(ctx, key)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
			return errorx.Unknown
		}

		if !ok {
			return nil
		}
	}

	if err := l.redisClient.ZIncrBy(ctx, key, value, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call ZIncrBy redis: %v", err)
		return errorx.Unknown
	}

	if closes {
		ttl := time.Until(end) + closedPeriodRetention
		if err := l.redisClient.Expire(ctx, key, ttl); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot set expiration of %s: %v", key, err)
		}
	}

	return nil
}

func (l *leaderboard) ensureLoaded(ctx context.Context, key string, period Period) error {
	if period != PeriodTotal {
		return nil
	}

	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	if ok {
		return nil
	}

	return l.loadTotalFromDB(ctx)
}

func (l *leaderboard) loadTotalFromDB(ctx context.Context) error {
	now := time.Now()
	xpKey := redisKeyLeaderboard(OrderedByXP, PeriodTotal, now)
	tpxKey := redisKeyLeaderboard(OrderedByTPX, PeriodTotal, now)

	for offset := 0; ; offset += loadBatchSize {
		users, err := l.userRepo.GetWithProgress(ctx, offset, loadBatchSize)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get users with progress: %v", err)
			return errorx.Unknown
		}

		for _, u := range users {
			err := l.redisClient.ZAdd(ctx, xpKey, redis.Z{Member: u.ID, Score: float64(u.TotalXP)})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot zadd redis: %v", err)
				return errorx.Unknown
			}

			err = l.redisClient.ZAdd(ctx, tpxKey, redis.Z{Member: u.ID, Score: u.TotalTokensEarned})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot zadd redis: %v", err)
				return errorx.Unknown
			}
		}

		if len(users) < loadBatchSize {
			return nil
		}
	}
}
