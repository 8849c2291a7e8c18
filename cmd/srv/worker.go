package main

import (
	"github.com/hauntpass/backend/internal/domain/cron"
	"github.com/hauntpass/backend/internal/domain/statistic"
	"github.com/hauntpass/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startWorker(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadEthClient()
	s.loadEventBus()

	go s.startPrometheus()

	cfg := xcontext.Configs(s.ctx).Worker
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewPendingTransactionCronJob(
		s.ethClient,
		s.tokenTxRepo,
		s.nftTxRepo,
		s.questCompletionRepo,
		s.directClaimRepo,
		s.userRepo,
		statistic.New(s.userRepo, s.redisClient),
		s.bus,
		cfg.ReconcileInterval,
	))

	return cronJobManager.Start(s.ctx)
}
