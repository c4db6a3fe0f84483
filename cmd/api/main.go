package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/app"
	"github.com/schuttebj/linc-print-gateway/internal/app/diagnostics"
	"github.com/schuttebj/linc-print-gateway/internal/app/proxy"
	"github.com/schuttebj/linc-print-gateway/internal/config"
	"github.com/schuttebj/linc-print-gateway/internal/domain/biometric"
	"github.com/schuttebj/linc-print-gateway/internal/domain/report"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/auth"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/backend"
	dbinfra "github.com/schuttebj/linc-print-gateway/internal/infrastructure/db"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/deviceagent"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/logging"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/monitoring"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/ratelimit"
	redisintra "github.com/schuttebj/linc-print-gateway/internal/infrastructure/redis"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	logBuffer := diagnostics.NewLogBuffer(
		diagnostics.WithMaxEntries(cfg.Diagnostics.MaxLogLines),
		diagnostics.WithEnabledLevels(parseLevels(cfg.Diagnostics.EnabledLevels)...),
		diagnostics.WithTimestamps(cfg.Diagnostics.IncludeTimestamps),
		diagnostics.WithRawArguments(cfg.Diagnostics.IncludeRawArgs),
	)
	logger, capture := diagnostics.AttachCapture(logger, logBuffer)
	logging.ReplaceGlobals(logger)
	defer logging.Sync(logger)
	defer capture.Detach()

	if err := monitoring.InitSentry(cfg.Monitoring, cfg.App); err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	monitoring.Init()
	defer monitoring.Flush()

	dbManager, err := dbinfra.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer dbManager.Close()
	if err := dbManager.EnsureSchema(ctx); err != nil {
		logger.Fatal("ensure schema failed", zap.Error(err))
	}

	var redisClient *redisintra.Client
	if cfg.Redis.Addr != "" {
		client, err := redisintra.Connect(cfg.Redis, logger)
		if err == nil {
			redisClient = client
			defer client.Close()
		} else {
			logger.Warn("redis connect failed", zap.Error(err))
		}
	}

	authManager := auth.NewManager(cfg.Auth)
	backendClient := backend.NewClient(cfg.Backend, logger)
	agentClient := deviceagent.NewClient(cfg.DeviceAgent, logger)

	reportRepo := dbinfra.NewReportRepository(dbManager.DB)
	reportService := report.NewService(reportRepo, backendClient, logBuffer, logger)
	biometricService := biometric.NewService(agentClient, backendClient, logger)

	diagHandler := diagnostics.NewHandler(logBuffer)
	reportHandler := report.NewHandler(reportService)
	biometricHandler := biometric.NewHandler(biometricService)
	proxyHandler := proxy.NewHandler(backendClient, logger)

	var ipLimiter, userLimiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		if redisClient != nil {
			ipLimiter = ratelimit.NewRedisLimiter(redisClient.Native, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RedisPrefix+":ip")
			userLimiter = ratelimit.NewRedisLimiter(redisClient.Native, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RedisPrefix+":user")
		} else {
			ipLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
			userLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		}
	}

	if cfg.Jobs.Enabled {
		jobs, err := scheduler.New(cfg.Jobs, reportService, agentClient, logBuffer, logger)
		if err != nil {
			logger.Fatal("scheduler init failed", zap.Error(err))
		}
		jobs.Start()
		defer jobs.Stop()
	}

	router := app.NewRouter(app.RouterDeps{
		Config:           cfg,
		ReportHandler:    reportHandler,
		BiometricHandler: biometricHandler,
		ProxyHandler:     proxyHandler,
		Diagnostics:      diagHandler,
		AuthManager:      authManager,
		Logger:           logger,
		LogBuffer:        logBuffer,
		IPLimiter:        ipLimiter,
		UserLimiter:      userLimiter,
	})

	server := &app.Server{Engine: router, Addr: ":" + cfg.App.Port, Logger: logger}
	if err := server.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func parseLevels(raw []string) []diagnostics.Level {
	levels := make([]diagnostics.Level, 0, len(raw))
	for _, l := range raw {
		if lv := diagnostics.Level(l); lv.Valid() {
			levels = append(levels, lv)
		}
	}
	return levels
}
