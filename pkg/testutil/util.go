package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/hauntpass/backend/config"
	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/logger"
	"github.com/hauntpass/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	TokenContract = "0x1111111111111111111111111111111111111111"
	NFTContract   = "0x2222222222222222222222222222222222222222"
)

func MockConfigs() config.Configs {
	return config.Configs{
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 10,
		},
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
			AdminUserIDs: []string{"admin"},
		},
		Blockchain: config.BlockchainConfigs{
			Chain:         "polygon-amoy",
			ChainID:       80002,
			SecretKey:     "secret",
			TokenAddress:  TokenContract,
			TokenDecimals: 18,
			NFTAddress:    NFTContract,
		},
		Reward: config.RewardConfigs{
			TokenConfirmAttempts:     3,
			NFTConfirmAttempts:       3,
			ConfirmInterval:          time.Millisecond,
			StartBlockLookback:       10,
			ClaimLease:               time.Minute,
			PlaceholderTokenIDPrefix: "pending-",
			NFTCollectionName:        "Haunted Passport",
		},
		Worker: config.WorkerConfigs{
			ReconcileInterval: time.Minute,
			PendingGrace:      time.Minute,
			BatchSize:         10,
		},
	}
}

// MockContext returns a context carrying test configs, a logger, a snowflake
// node and a fresh shared-cache in-memory sqlite database.
func MockContext() context.Context {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// sqlite allows one writer; a single connection serializes test writers.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
