package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Census   CensusConfig
}

type AppConfig struct {
	Port string
	Env  string
}

// UpstreamConfig describes the census backend this gateway proxies.
// The gateway authenticates against it with its own service account.
type UpstreamConfig struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// CensusConfig holds tunables for the census data pipeline.
type CensusConfig struct {
	CoverageBatchSize    int
	CoverageCacheTTL     time.Duration
	LiveUpdatesLimit     int
	FacilityFetchTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	upstreamTimeout, err := time.ParseDuration(viper.GetString("UPSTREAM_TIMEOUT"))
	if err != nil {
		upstreamTimeout = 30 * time.Second
	}

	coverageTTL, err := time.ParseDuration(viper.GetString("COVERAGE_CACHE_TTL"))
	if err != nil {
		coverageTTL = 5 * time.Minute
	}

	facilityTimeout, err := time.ParseDuration(viper.GetString("FACILITY_FETCH_TIMEOUT"))
	if err != nil {
		facilityTimeout = 5 * time.Second
	}

	batchSize := viper.GetInt("COVERAGE_BATCH_SIZE")
	if batchSize <= 0 {
		batchSize = 10
	}

	liveUpdatesLimit := viper.GetInt("LIVE_UPDATES_LIMIT")
	if liveUpdatesLimit <= 0 {
		liveUpdatesLimit = 10
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Upstream: UpstreamConfig{
			BaseURL:  viper.GetString("UPSTREAM_BASE_URL"),
			Email:    viper.GetString("UPSTREAM_EMAIL"),
			Password: viper.GetString("UPSTREAM_PASSWORD"),
			Timeout:  upstreamTimeout,
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Census: CensusConfig{
			CoverageBatchSize:    batchSize,
			CoverageCacheTTL:     coverageTTL,
			LiveUpdatesLimit:     liveUpdatesLimit,
			FacilityFetchTimeout: facilityTimeout,
		},
	}

	return config, nil
}
