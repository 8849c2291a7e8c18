package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string
	LogLevel string

	Database         DatabaseConfigs
	ApiServer        APIServerConfigs
	PrometheusServer ServerConfigs
	Auth             AuthConfigs
	Redis            RedisConfigs
	Kafka            KafkaConfigs
	Blockchain       BlockchainConfigs
	Explorer         ExplorerConfigs
	Reward           RewardConfigs
	Worker           WorkerConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	AllowedOrigins []string
	MaxLimit       int
	DefaultLimit   int
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs

	// AdminUserIDs may call the direct reward API.
	AdminUserIDs []string
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr string

	// UserDataTopic receives every userDataUpdated event published on the bus.
	UserDataTopic string
}

type BlockchainConfigs struct {
	Chain   string
	ChainID int64
	Rpcs    []string

	// SecretKey seeds the admin wallet private key.
	SecretKey string

	TokenAddress  string
	TokenDecimals int
	NFTAddress    string

	UseEip1559                 bool
	RefreshConnectionFrequency time.Duration
}

type ExplorerConfigs struct {
	Endpoints []string
	APIKey    string
}

type RewardConfigs struct {
	TokenConfirmAttempts int
	NFTConfirmAttempts   int
	ConfirmInterval      time.Duration

	// StartBlockLookback is subtracted from the current block before a watch
	// starts, so a transaction mined while the request was in flight is found.
	StartBlockLookback int64

	ClaimLease time.Duration

	PlaceholderTokenIDPrefix string
	NFTCollectionName        string
}

type WorkerConfigs struct {
	ReconcileInterval time.Duration
	PendingGrace      time.Duration
	BatchSize         int
	SnowflakeNode     int64
}
