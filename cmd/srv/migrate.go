package main

import (
	"github.com/hauntpass/backend/migration"
	"github.com/hauntpass/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())

	if err := migration.Migrate(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Database is at version %d", migration.LatestVersion())
	return nil
}
