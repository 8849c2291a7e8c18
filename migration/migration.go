package migration

import (
	"context"
	"errors"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// migrators[i] migrates the database to version i+1. Append only.
var migrators = []func(context.Context) error{
	migrate0001,
	migrate0002,
	migrate0003,
}

func LatestVersion() int {
	return len(migrators)
}

// Migrate applies every migration newer than the stored version. Each one
// runs in its own transaction together with the version bump.
func Migrate(ctx context.Context) error {
	if err := xcontext.DB(ctx).AutoMigrate(&entity.Migration{}); err != nil {
		return err
	}

	version, err := currentVersion(ctx)
	if err != nil {
		return err
	}

	for v := version; v < len(migrators); v++ {
		if err := apply(ctx, v+1, migrators[v]); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot migrate to version %d: %v", v+1, err)
			return err
		}

		xcontext.Logger(ctx).Infof("Migrated database to version %d", v+1)
	}

	return nil
}

func currentVersion(ctx context.Context) (int, error) {
	var m entity.Migration
	err := xcontext.DB(ctx).Take(&m, "id=?", 1).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, err
	}

	return m.Version, nil
}

func apply(ctx context.Context, version int, migrator func(context.Context) error) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := migrator(ctx); err != nil {
		return err
	}

	err := xcontext.DB(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entity.Migration{ID: 1, Version: version}).Error
	if err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}
