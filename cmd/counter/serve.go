package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"counter_pos/internal/handlers"
	"counter_pos/internal/redis"
	"counter_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the counter HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) sessionStore() services.SessionStore {
	if a.cfg.RedisURL == "" {
		a.logger.Info("REDIS_URL not set, keeping sessions in memory")
		return redis.NewMemoryClient()
	}
	client, err := redis.Initialize(a.cfg.RedisURL)
	if err != nil {
		a.logger.Warn("redis unavailable, keeping sessions in memory", zap.Error(err))
		return redis.NewMemoryClient()
	}
	a.closers = append(a.closers, client.Close)
	return client
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := a.seedAdmin(); err != nil {
		return err
	}

	if !a.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	sessions := services.NewSessionManager(a.directory, a.sessionStore(), a.cfg.SessionTTL(), a.logger.Named("sessions"))
	apiHandler := handlers.NewAPIHandler(a.menu, a.directory, a.ledger, sessions, a.cfg.JWTSecret, a.logger.Named("http"))

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(a.logger.Named("http")))
	apiHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("port", a.cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			logger.Error("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		logger.Debug("request", fields...)
	}
}
