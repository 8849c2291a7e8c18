package migration

import (
	"context"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/xcontext"
)

const backfillBatchSize = 500

// migrate0002 recomputes level and tier of users imported with only their
// total xp. A tier is never lowered.
func migrate0002(ctx context.Context) error {
	for offset := 0; ; offset += backfillBatchSize {
		var users []entity.User
		err := xcontext.DB(ctx).
			Where("total_xp>0").
			Order("id").
			Offset(offset).
			Limit(backfillBatchSize).
			Find(&users).Error
		if err != nil {
			return err
		}

		for _, u := range users {
			level := entity.LevelFromXP(u.TotalXP)
			tier := entity.HigherTier(u.PassportTier, entity.TierFromLevel(level))
			if level == u.Level && tier == u.PassportTier {
				continue
			}

			err := xcontext.DB(ctx).
				Model(&entity.User{}).
				Where("id=?", u.ID).
				Updates(map[string]any{"level": level, "passport_tier": tier}).Error
			if err != nil {
				return err
			}
		}

		if len(users) < backfillBatchSize {
			return nil
		}
	}
}
