// Package leaderboardd wires the leaderboard service for the daemon and
// exposes its lifecycle as cobra commands.
package leaderboardd

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/absmach/supermq/pkg/jaeger"
	"github.com/absmach/supermq/pkg/prometheus"
	"github.com/absmach/supermq/pkg/server"
	httpserver "github.com/absmach/supermq/pkg/server/http"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard/api"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/leaderboard/middleware"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/config"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/record"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/registry"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/vote"
)

const svcName = "leaderboard"

type Config struct {
	LogLevel   string
	InstanceID string

	// ConfigPath points at the curated TOML config; empty means defaults.
	ConfigPath string

	// DataDir is the local snapshot cache. RemoteDir backs the record store
	// when no S3 bucket is configured, which is the local development setup.
	DataDir   string
	RemoteDir string
	S3        record.S3Config

	HubURL   string
	HubToken string

	ResultsPrefix  string
	RequestsPrefix string
	VotesPath      string

	SnapshotTTL        time.Duration
	RefreshInterval    time.Duration
	RestartInterval    time.Duration
	FlushInterval      time.Duration
	SkipInitialRefresh bool

	Server     server.Config
	OTELURL    url.URL
	TraceRatio float64
}

func StartLeaderboard(ctx context.Context, cancel context.CancelFunc, cfg Config) error {
	g, ctx := errgroup.WithContext(ctx)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := jaeger.NewProvider(ctx, svcName, cfg.OTELURL, "", cfg.TraceRatio)
		if err != nil {
			return fmt.Errorf("failed to initialize opentelemetry: %s", err.Error())
		}
		defer func() {
			if err := sdktp.Shutdown(ctx); err != nil {
				slog.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	curated := config.Default()
	if cfg.ConfigPath != "" {
		var err error
		if curated, err = config.Load(cfg.ConfigPath); err != nil {
			return fmt.Errorf("failed to load curated config: %s", err.Error())
		}
	}

	var remote record.Store
	var err error
	if cfg.S3.Bucket != "" {
		remote, err = record.NewS3(ctx, cfg.S3)
	} else {
		remote, err = record.NewFS(cfg.RemoteDir)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize record store: %s", err.Error())
	}

	cache, err := record.NewFS(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize cache store: %s", err.Error())
	}

	// Votes accumulate in the local log and are published to the remote store
	// by the flusher; a fresh deployment starts from the published copy.
	if err := vote.Hydrate(ctx, remote, cache, cfg.VotesPath); err != nil {
		return fmt.Errorf("failed to hydrate vote log: %s", err.Error())
	}
	ledger, err := vote.Open(ctx, cache, cfg.VotesPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open vote ledger: %s", err.Error())
	}

	reg := registry.NewClient(cfg.HubURL, cfg.HubToken, 0)

	// The supervisor restarts the whole process; from inside, a restart is a
	// clean shutdown.
	restart := cancel

	svc := leaderboard.NewService(remote, cache, ledger, reg, curated, leaderboard.Options{
		ResultsPrefix:  cfg.ResultsPrefix,
		RequestsPrefix: cfg.RequestsPrefix,
		SnapshotTTL:    cfg.SnapshotTTL,
		Restart:        restart,
	}, logger)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	if !cfg.SkipInitialRefresh {
		if err := svc.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to build initial snapshot: %s", err.Error())
		}
	}

	cron := leaderboard.NewCron(svc, logger, cfg.RefreshInterval, cfg.RestartInterval, restart)
	flusher := vote.NewFlusher(ledger, remote, logger, cfg.FlushInterval)

	hs := httpserver.NewServer(ctx, cancel, svcName, cfg.Server, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return cron.Start(ctx)
	})

	g.Go(func() error {
		return flusher.Start(ctx)
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}

	return nil
}
