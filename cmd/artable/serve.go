package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/artwork-table/pkg/config"
	"github.com/Sternrassler/artwork-table/pkg/session"
	"github.com/Sternrassler/artwork-table/pkg/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the artwork table to browsers",
		Long: `Starts the browser front end.

Each browser gets its own table view, kept under a session cookie. With the
redis session backend, views survive restarts and are shared between replicas.`,
		Example: `  # Listen on the configured address (default :8080)
  artable serve

  # Keep sessions in Redis
  ARTABLE_SESSION_BACKEND=redis REDIS_URL=localhost:6379 artable serve --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			gin.SetMode(gin.ReleaseMode)

			client, err := a.catalogClient()
			if err != nil {
				return fmt.Errorf("failed to create catalog client: %w", err)
			}

			store, closeStore, err := newStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			wcfg := web.DefaultConfig()
			wcfg.Table = a.tableConfig()
			wcfg.SessionTTL = a.cfg.Session.TTL
			srv, err := web.New(client, store, wcfg)
			if err != nil {
				return fmt.Errorf("failed to create web server: %w", err)
			}

			return serve(cmd.Context(), a.cfg.Server, srv.Handler())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (overrides server.addr)")

	return cmd
}

// newStore opens the configured session store.
func newStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		return session.NewRedisStore(redisClient, cfg.Session.TTL), func() { redisClient.Close() }, nil

	case config.BackendMemory:
		return session.NewMemoryStore(cfg.Session.TTL), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// serve runs handler until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler) error {
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("Serving artwork table")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
			return err
		}
		log.Info().Msg("Server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}
