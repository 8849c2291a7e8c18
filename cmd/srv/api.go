package main

import (
	"fmt"
	"net/http"

	"github.com/hauntpass/backend/internal/middleware"
	"github.com/hauntpass/backend/pkg/kafka"
	"github.com/hauntpass/backend/pkg/prometheus"
	"github.com/hauntpass/backend/pkg/router"
	"github.com/hauntpass/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadEthClient()
	s.loadEventBus()
	s.loadOrchestrator()
	s.loadDomains()

	if err := s.startUserDataSubscriber(); err != nil {
		return err
	}

	go s.startPrometheus()

	cfg := xcontext.Configs(s.ctx)
	httpSrv := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.loadRouter().Handler(cfg.ApiServer.AllowedOrigins),
	}

	go func() {
		<-s.ctx.Done()
		if err := httpSrv.Close(); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot close api server: %v", err)
		}
	}()

	xcontext.Logger(s.ctx).Infof("Starting server on %s", cfg.ApiServer.Address())
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() *router.Router {
	defaultRouter := router.New(s.ctx)
	defaultRouter.Before(middleware.WithStartTime())
	defaultRouter.AddCloser(middleware.Logger())
	defaultRouter.AddCloser(middleware.Prometheus())

	authVerifier := middleware.NewAuthVerifier(s.tokenEngine)

	// These following APIs need authentication.
	authRouter := defaultRouter.Branch()
	authRouter.Before(authVerifier.Middleware())
	{
		router.POST(authRouter, "/claimReward", s.rewardDomain.ClaimReward)
		router.GET(authRouter, "/getMyProgress", s.userDomain.GetMyProgress)
		router.GET(authRouter, "/getNotifications", s.notificationDomain.GetNotifications)
		router.POST(authRouter, "/readNotification", s.notificationDomain.ReadNotification)
		router.POST(authRouter, "/markNFTAddedToWallet", s.walletNFTDomain.MarkNFTAddedToWallet)
		router.GET(authRouter, "/hasNFTInWallet", s.walletNFTDomain.HasNFTInWallet)
		router.Websocket(authRouter, "/ws", s.wsDomain.ServeClient)
	}

	// Admin API.
	adminRouter := authRouter.Branch()
	adminRouter.Before(middleware.OnlyAdmin())
	{
		router.POST(adminRouter, "/claimDirectReward", s.rewardDomain.ClaimDirectReward)
	}

	// Public API.
	router.GET(defaultRouter, "/getLeaderboard", s.statisticDomain.GetLeaderboard)

	return defaultRouter
}

// startUserDataSubscriber consumes the user data topic when kafka is
// configured, so events published by any node reach the sockets of this
// node. Every api node reads the whole topic under its own group.
func (s *srv) startUserDataSubscriber() error {
	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr == "" {
		return nil
	}

	subscriber, err := kafka.NewSubscriber(
		fmt.Sprintf("ws-%s", s.node().Generate()),
		kafkaBrokers(cfg.Addr),
		[]string{cfg.UserDataTopic},
		s.wsDomain.SubscribeUserDataUpdated,
	)
	if err != nil {
		return err
	}

	go subscriber.Subscribe(s.ctx)
	go func() {
		<-s.ctx.Done()
		if err := subscriber.Stop(s.ctx); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot stop user data subscriber: %v", err)
		}
	}()

	return nil
}

func (s *srv) startPrometheus() {
	cfg := xcontext.Configs(s.ctx).PrometheusServer

	httpSrv := &http.Server{
		Addr:    cfg.Address(),
		Handler: prometheus.NewHandler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting prometheus on %s", cfg.Address())
	if err := httpSrv.ListenAndServe(); err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot start prometheus server: %v", err)
	}
}
