package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/absmach/supermq/pkg/server"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboardd"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/record"
)

const (
	defHTTPPort   = "7070"
	envPrefixHTTP = "LEADERBOARD_HTTP_"
	envPrefixS3   = "LEADERBOARD_S3_"
	pathEnv       = ".env"
)

type envConfig struct {
	LogLevel           string        `env:"LEADERBOARD_LOG_LEVEL"            envDefault:"info"`
	InstanceID         string        `env:"LEADERBOARD_INSTANCE_ID"`
	ConfigPath         string        `env:"LEADERBOARD_CONFIG_PATH"`
	DataDir            string        `env:"LEADERBOARD_DATA_DIR"             envDefault:"./data/cache"`
	RemoteDir          string        `env:"LEADERBOARD_REMOTE_DIR"           envDefault:"./data/remote"`
	HubURL             string        `env:"LEADERBOARD_HUB_URL"`
	HubToken           string        `env:"LEADERBOARD_HUB_TOKEN"`
	ResultsPrefix      string        `env:"LEADERBOARD_RESULTS_PREFIX"       envDefault:"results"`
	RequestsPrefix     string        `env:"LEADERBOARD_REQUESTS_PREFIX"      envDefault:"requests"`
	VotesPath          string        `env:"LEADERBOARD_VOTES_PATH"           envDefault:"votes/votes.jsonl"`
	SnapshotTTL        time.Duration `env:"LEADERBOARD_SNAPSHOT_TTL"         envDefault:"10m"`
	RefreshInterval    time.Duration `env:"LEADERBOARD_REFRESH_INTERVAL"     envDefault:"10m"`
	RestartInterval    time.Duration `env:"LEADERBOARD_RESTART_INTERVAL"     envDefault:"30m"`
	FlushInterval      time.Duration `env:"LEADERBOARD_FLUSH_INTERVAL"       envDefault:"15m"`
	SkipInitialRefresh bool          `env:"LEADERBOARD_SKIP_INITIAL_REFRESH" envDefault:"false"`
	OTELURL            url.URL       `env:"LEADERBOARD_OTEL_URL"`
	TraceRatio         float64       `env:"LEADERBOARD_TRACE_RATIO"          envDefault:"0"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	s3Cfg := record.S3Config{}
	if err := env.ParseWithOptions(&s3Cfg, env.Options{Prefix: envPrefixS3}); err != nil {
		log.Fatalf("failed to load S3 configuration : %s", err.Error())
	}

	httpServerConfig := server.Config{Port: defHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		log.Fatalf("failed to load HTTP server configuration : %s", err.Error())
	}

	svcCfg := leaderboardd.Config{
		LogLevel:           cfg.LogLevel,
		InstanceID:         cfg.InstanceID,
		ConfigPath:         cfg.ConfigPath,
		DataDir:            cfg.DataDir,
		RemoteDir:          cfg.RemoteDir,
		S3:                 s3Cfg,
		HubURL:             cfg.HubURL,
		HubToken:           cfg.HubToken,
		ResultsPrefix:      cfg.ResultsPrefix,
		RequestsPrefix:     cfg.RequestsPrefix,
		VotesPath:          cfg.VotesPath,
		SnapshotTTL:        cfg.SnapshotTTL,
		RefreshInterval:    cfg.RefreshInterval,
		RestartInterval:    cfg.RestartInterval,
		FlushInterval:      cfg.FlushInterval,
		SkipInitialRefresh: cfg.SkipInitialRefresh,
		Server:             httpServerConfig,
		OTELURL:            cfg.OTELURL,
		TraceRatio:         cfg.TraceRatio,
	}

	if err := leaderboardd.StartLeaderboard(ctx, cancel, svcCfg); err != nil {
		log.Fatalf("leaderboard service terminated: %s", err.Error())
	}
}
