package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bwmarrin/snowflake"
	"github.com/hauntpass/backend/config"
	"github.com/hauntpass/backend/internal/domain"
	"github.com/hauntpass/backend/internal/domain/blockchain"
	"github.com/hauntpass/backend/internal/domain/blockchain/eth"
	"github.com/hauntpass/backend/internal/domain/ledger"
	"github.com/hauntpass/backend/internal/domain/monitor"
	"github.com/hauntpass/backend/internal/domain/reward"
	"github.com/hauntpass/backend/internal/domain/statistic"
	"github.com/hauntpass/backend/internal/domain/walletnft"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/migration"
	"github.com/hauntpass/backend/pkg/api/explorer"
	"github.com/hauntpass/backend/pkg/authenticator"
	"github.com/hauntpass/backend/pkg/eventbus"
	"github.com/hauntpass/backend/pkg/kafka"
	"github.com/hauntpass/backend/pkg/logger"
	"github.com/hauntpass/backend/pkg/pubsub"
	"github.com/hauntpass/backend/pkg/ws"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/hauntpass/backend/pkg/xredis"

	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app  *cli.App
	ctx  context.Context
	stop context.CancelFunc

	tokenEngine authenticator.TokenEngine[model.AccessToken]
	redisClient xredis.Client
	ethClient   eth.EthClient
	bus         eventbus.Bus
	publisher   pubsub.Publisher
	hub         *ws.Hub

	userRepo            repository.UserRepository
	questRepo           repository.QuestRepository
	questCompletionRepo repository.QuestCompletionRepository
	directClaimRepo     repository.DirectClaimRepository
	tokenTxRepo         repository.TokenTransactionRepository
	nftTxRepo           repository.NFTTransactionRepository
	notificationRepo    repository.NotificationRepository
	walletNFTRepo       repository.WalletNFTRepository

	leaderboard  statistic.Leaderboard
	orchestrator reward.Orchestrator

	rewardDomain       domain.RewardDomain
	userDomain         domain.UserDomain
	statisticDomain    domain.StatisticDomain
	notificationDomain domain.NotificationDomain
	walletNFTDomain    domain.WalletNFTDomain
	wsDomain           domain.WsDomain
}

// loadContext builds the root context shared by every command. It is done
// when the process receives an interrupt.
func (s *srv) loadContext(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx.String("config"))
	if err != nil {
		return err
	}

	node, err := snowflake.NewNode(cfg.Worker.SnowflakeNode)
	if err != nil {
		return fmt.Errorf("invalid snowflake node %d: %w", cfg.Worker.SnowflakeNode, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	s.stop = stop
	ctx = xcontext.WithConfigs(ctx, *cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithHTTPClient(ctx, &http.Client{Timeout: 30 * time.Second})
	s.ctx = ctx

	return nil
}

func loadConfig(path string) (*config.Configs, error) {
	cfg := &config.Configs{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("cannot load config %s: %w", path, err)
	}

	// Secrets are usually not kept in the config file.
	overrideString(&cfg.Database.Password, "DATABASE_PASSWORD")
	overrideString(&cfg.Auth.TokenSecret, "TOKEN_SECRET")
	overrideString(&cfg.Blockchain.SecretKey, "BLOCKCHAIN_SECRET_KEY")
	overrideString(&cfg.Explorer.APIKey, "EXPLORER_API_KEY")
	overrideString(&cfg.Redis.Addr, "REDIS_ADDR")
	overrideString(&cfg.Kafka.Addr, "KAFKA_ADDR")

	return cfg, nil
}

func overrideString(field *string, env string) {
	if value, ok := os.LookupEnv(env); ok {
		*field = value
	}
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       cfg.ConnectionString(),
		DefaultStringSize:         256,
		DisableDatetimePrecision:  true,
		DontSupportRenameIndex:    true,
		DontSupportRenameColumn:   true,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		panic(err)
	}

	return db
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	}

	return gormlogger.Silent
}

func (s *srv) migrateDB() {
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.questRepo = repository.NewQuestRepository()
	s.questCompletionRepo = repository.NewQuestCompletionRepository()
	s.directClaimRepo = repository.NewDirectClaimRepository()
	s.tokenTxRepo = repository.NewTokenTransactionRepository()
	s.nftTxRepo = repository.NewNFTTransactionRepository()
	s.notificationRepo = repository.NewNotificationRepository()
	s.walletNFTRepo = repository.NewWalletNFTRepository()
}

func (s *srv) loadEthClient() {
	cfg := xcontext.Configs(s.ctx).Blockchain
	ethClient := eth.NewEthClient(cfg.Chain, cfg.ChainID, cfg.Rpcs, cfg.UseEip1559)
	ethClient.Start(s.ctx)
	s.ethClient = ethClient
}

// loadEventBus creates the process bus. With kafka configured, every
// userDataUpdated event is also forwarded to the user data topic keyed by
// user id.
func (s *srv) loadEventBus() {
	s.bus = eventbus.New()

	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr == "" {
		xcontext.Logger(s.ctx).Warnf("Kafka is not configured, events stay in this process")
		return
	}

	publisher, err := kafka.NewPublisher(s.node().Generate().String(), kafkaBrokers(cfg.Addr))
	if err != nil {
		panic(err)
	}

	s.publisher = publisher
	eventbus.Forward(s.bus, model.EventUserDataUpdated, publisher, cfg.UserDataTopic, userDataKey)
}

func userDataKey(payload any) string {
	if event, ok := payload.(model.UserDataUpdatedEvent); ok {
		return event.UserID
	}

	return model.EventUserDataUpdated
}

func kafkaBrokers(addr string) []string {
	brokers := []string{}
	for _, broker := range strings.Split(addr, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}

	return brokers
}

func (s *srv) node() *snowflake.Node {
	return xcontext.SnowFlake(s.ctx)
}

func (s *srv) loadOrchestrator() {
	cfg := xcontext.Configs(s.ctx)

	dispatcher := eth.NewEthDispatcher(s.ethClient)
	submitter := blockchain.NewSubmitter(s.ethClient, dispatcher)

	s.leaderboard = statistic.New(s.userRepo, s.redisClient)
	s.orchestrator = reward.New(
		ledger.New(
			s.userRepo,
			s.questRepo,
			s.questCompletionRepo,
			s.directClaimRepo,
			s.notificationRepo,
		),
		blockchain.NewTokenGateway(submitter, s.tokenTxRepo),
		blockchain.NewNFTGateway(submitter, s.nftTxRepo),
		monitor.New(explorer.New(cfg.Explorer)),
		s.leaderboard,
		s.tokenTxRepo,
		s.nftTxRepo,
		s.bus,
	)
}

func (s *srv) loadDomains() {
	cfg := xcontext.Configs(s.ctx)

	s.tokenEngine = authenticator.NewTokenEngine[model.AccessToken](
		cfg.Auth.TokenSecret, cfg.Auth.AccessToken.Expiration)
	s.hub = ws.NewHub()

	wsDomain := domain.NewWsDomain(s.hub, cfg.ApiServer.AllowedOrigins)
	if s.publisher == nil {
		wsDomain.ListenBus(s.bus)
	}

	s.wsDomain = wsDomain
	s.rewardDomain = domain.NewRewardDomain(s.userRepo, s.orchestrator)
	s.userDomain = domain.NewUserDomain(s.userRepo, s.leaderboard)
	s.statisticDomain = domain.NewStatisticDomain(s.leaderboard)
	s.notificationDomain = domain.NewNotificationDomain(s.notificationRepo)
	s.walletNFTDomain = domain.NewWalletNFTDomain(walletnft.NewTracker(s.walletNFTRepo, s.redisClient))
}
