package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/configs"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/events"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/ratelimiter"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/repository"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/tracing"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/ws"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/presentation/api"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/presentation/handler/health"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/presentation/handler/socket"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/presentation/handler/submissions"
)

const (
	serviceName = "billboard-api"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	submissionRepository := repository.NewSubmissionRepository(cfg.SubmissionStore.Capacity)

	registry := ws.NewRegistry(cfg.Realtime.DefaultRoom, cfg.Realtime.SendBuffer)
	ws.Install(registry)

	publisher := events.NewPublisher(cfg.Realtime.DefaultRoom)

	submissionsHandler := submissions.NewHandler(submissionRepository, publisher)
	healthHandler := health.NewHandler()
	socketHandler := socket.NewHandler(registry)

	rateLimiter := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rateLimiter.Close()

	app := api.NewApplication(*cfg, *submissionsHandler, *healthHandler, *socketHandler, logger, rateLimiter)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	go logConnectionStats(ctx, registry, cfg.Realtime.StatsInterval, logger)

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}

func logConnectionStats(ctx context.Context, registry *ws.Registry, interval time.Duration, logger *zap.SugaredLogger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rooms, clients := registry.Stats()
			logger.Infow("active connections", "clients", clients, "rooms", rooms)
		}
	}
}
