package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type WorkerConfig struct {
	Environment string
	Postgres    PostgresConfig
	Redis       WorkerRedisConfig
	Queues      QueueConfig
	Storage     StorageConfig
	Security    WorkerSecurityConfig
	Marketplace MarketplaceConfig
	Logging     LoggingConfig
}

// WorkerSecurityConfig carries the secret that upload signatures are checked against.
type WorkerSecurityConfig struct {
	MediaSecret string
}

type WorkerRedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type QueueConfig struct {
	VisibilityTimeout time.Duration
	ClaimInterval     time.Duration
}

type LoggingConfig struct {
	Level string
}

func LoadWorker() (*WorkerConfig, error) {
	v := viper.New()
	v.SetConfigName("worker")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("HIRFA_WORKER")
	v.AutomaticEnv()

	setWorkerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg WorkerConfig
	if err := v.Unmarshal(&cfg, decoderOptions); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return &cfg, nil
}

// RedisOptions narrows the worker redis settings to the shared client config.
func (c WorkerRedisConfig) RedisOptions() RedisConfig {
	return RedisConfig{Addr: c.Addr, Password: c.Password, DB: c.DB, Stream: c.Stream}
}

func setWorkerDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "hirfa:events")
	v.SetDefault("redis.group", "hirfa-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("queues.visibilitytimeout", "2m")
	v.SetDefault("queues.claiminterval", "10s")

	v.SetDefault("storage.bucketmedia", "hirfa-media")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("marketplace.storyttl", "24h")

	v.SetDefault("logging.level", "info")
}
