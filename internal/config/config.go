package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Settings struct {
	MariaDBDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ServerPort      int
	MetricsPort     int

	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	StagingBucket  string
	MaxUploadBytes int64

	LivepeerAPIURL string
	LivepeerAPIKey string

	ChainRPCURL      string
	AllowedChainIDs  []int64
	ContractAddress  string
	MinterPrivateKey string
	ExplorerBaseURL  string

	PollInterval      time.Duration
	ProgressEvery     time.Duration
	PipelineTimeout   time.Duration
	SessionTTL        time.Duration
	SessionViewTTL    time.Duration
	WorkerConcurrency int

	JWTPublicKey       string
	RateLimitPerMinute int
}

var required = []string{
	"MARIADB_DSN",
	"MARIADB_MAX_OPEN_CONN",
	"MARIADB_MAX_IDLE_CONNS",
	"MARIADB_CONN_MAX_LIFETIME",
	"SERVER_PORT",
	"MINIO_ENDPOINT",
	"MINIO_ACCESS_KEY",
	"MINIO_SECRET_KEY",
	"LIVEPEER_API_KEY",
	"CHAIN_RPC_URL",
	"ALLOWED_CHAIN_IDS",
	"CONTRACT_ADDRESS",
	"MINTER_PRIVATE_KEY",
}

func setDefaults() {
	viper.SetDefault("METRICS_PORT", 9091)
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("STAGING_BUCKET", "staging")
	viper.SetDefault("MAX_UPLOAD_BYTES", int64(10)<<30) // 10 GB
	viper.SetDefault("LIVEPEER_API_URL", "https://livepeer.studio")
	viper.SetDefault("EXPLORER_BASE_URL", "https://explorer.zora.energy")
	viper.SetDefault("POLL_INTERVAL_MS", 5000)
	viper.SetDefault("PROGRESS_EVERY", "1s")
	viper.SetDefault("PIPELINE_TIMEOUT", "6h")
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("SESSION_VIEW_TTL", "5s")
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	viper.AutomaticEnv()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	setDefaults()

	for _, key := range required {
		if !viper.IsSet(key) {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	chainIDs, err := parseChainIDs(viper.GetString("ALLOWED_CHAIN_IDS"))
	if err != nil {
		return nil, err
	}

	pollInterval := time.Duration(viper.GetInt("POLL_INTERVAL_MS")) * time.Millisecond
	if pollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_MS must be positive")
	}

	return &Settings{
		MariaDBDSN:      viper.GetString("MARIADB_DSN"),
		MaxOpenConns:    viper.GetInt("MARIADB_MAX_OPEN_CONN"),
		MaxIdleConns:    viper.GetInt("MARIADB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: time.Duration(viper.GetInt("MARIADB_CONN_MAX_LIFETIME")) * time.Second,
		ServerPort:      viper.GetInt("SERVER_PORT"),
		MetricsPort:     viper.GetInt("METRICS_PORT"),

		RedisAddr:     viper.GetString("REDIS_ADDR"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),

		MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
		MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),
		StagingBucket:  viper.GetString("STAGING_BUCKET"),
		MaxUploadBytes: viper.GetInt64("MAX_UPLOAD_BYTES"),

		LivepeerAPIURL: strings.TrimRight(viper.GetString("LIVEPEER_API_URL"), "/"),
		LivepeerAPIKey: viper.GetString("LIVEPEER_API_KEY"),

		ChainRPCURL:      viper.GetString("CHAIN_RPC_URL"),
		AllowedChainIDs:  chainIDs,
		ContractAddress:  viper.GetString("CONTRACT_ADDRESS"),
		MinterPrivateKey: viper.GetString("MINTER_PRIVATE_KEY"),
		ExplorerBaseURL:  strings.TrimRight(viper.GetString("EXPLORER_BASE_URL"), "/"),

		PollInterval:      pollInterval,
		ProgressEvery:     viper.GetDuration("PROGRESS_EVERY"),
		PipelineTimeout:   viper.GetDuration("PIPELINE_TIMEOUT"),
		SessionTTL:        viper.GetDuration("SESSION_TTL"),
		SessionViewTTL:    viper.GetDuration("SESSION_VIEW_TTL"),
		WorkerConcurrency: viper.GetInt("WORKER_CONCURRENCY"),

		JWTPublicKey:       viper.GetString("JWT_PUBLIC_KEY"),
		RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
	}, nil
}

// parseChainIDs reads a comma separated list such as "7777777,999999999".
func parseChainIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ALLOWED_CHAIN_IDS: invalid chain id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("ALLOWED_CHAIN_IDS must list at least one chain id")
	}
	return ids, nil
}
