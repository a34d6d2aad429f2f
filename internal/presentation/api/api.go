package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/configs"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/metrics"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/ratelimiter"
	"github.com/AdBoard-Booking/neon-insta-screen/internal/infrastructure/ws"
	healthHandler "github.com/AdBoard-Booking/neon-insta-screen/internal/presentation/handler/health"
	socketHandler "github.com/AdBoard-Booking/neon-insta-screen/internal/presentation/handler/socket"
	submissionsHandler "github.com/AdBoard-Booking/neon-insta-screen/internal/presentation/handler/submissions"
)

type Application struct {
	config             configs.Config
	submissionsHandler submissionsHandler.Handler
	healthHandler      healthHandler.Handler
	socketHandler      socketHandler.Handler
	logger             *zap.SugaredLogger
	ratelimiter        ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	submissionsHandler submissionsHandler.Handler,
	healthHandler healthHandler.Handler,
	socketHandler socketHandler.Handler,
	logger *zap.SugaredLogger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:             config,
		submissionsHandler: submissionsHandler,
		healthHandler:      healthHandler,
		socketHandler:      socketHandler,
		logger:             logger,
		ratelimiter:        ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(app.enableCors)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(app.rateLimiterMiddleware)

		r.Post("/submit", app.submissionsHandler.SubmitHandler)

		r.Route("/admin/submissions", func(r chi.Router) {
			r.Get("/", app.submissionsHandler.ListHandler)
			r.Patch("/", app.submissionsHandler.UpdateStatusHandler)
			r.Delete("/", app.submissionsHandler.DeleteHandler)
		})

		r.Get("/billboard/approved", app.submissionsHandler.ApprovedHandler)

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	// Long-lived routes stay outside the timeout group.
	r.Get("/ws", app.socketHandler.ConnectHandler)
	r.Handle("/metrics", metrics.Handler())

	return otelhttp.NewHandler(r, "billboard-api")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		// Stop accepting new connections first, then give websocket clients
		// a clean close instead of a reset.
		err := srv.Shutdown(ctx)
		ws.Reset()

		shutdown <- err
	}()

	app.logger.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
