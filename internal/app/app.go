package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/syncstream/server/internal/controller"
	connInmemory "github.com/syncstream/server/internal/repository/connection/inmemory"
	"github.com/syncstream/server/internal/repository/postgres"
	sessionRedis "github.com/syncstream/server/internal/repository/session/redis"
	"github.com/syncstream/server/internal/service/identity"
	"github.com/syncstream/server/internal/service/room"
	"github.com/syncstream/server/pkg/ctxlogger"
	"github.com/syncstream/server/pkg/pgclient"
	"github.com/syncstream/server/pkg/redisclient"
)

type AppConfig struct {
	Secret             string `json:"-"`
	Host               string `json:"host"`
	Port               int    `json:"port"`
	LogLevel           string `json:"log_level"`
	QueueLimit         int    `json:"queue_limit"`
	StateRetentionSec  int    `json:"state_retention_sec"`
	ConnectTokenTTLSec int    `json:"connect_token_ttl_sec"`
	PostgresDSN        string `json:"-"`
	RedisHost          string `json:"redis_host"`
	RedisPort          int    `json:"redis_port"`
	RedisPassword      string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return fmt.Errorf("secret must be set")
	}
	if cfg.QueueLimit < 1 {
		return fmt.Errorf("queue limit must be greater than 0")
	}
	if cfg.StateRetentionSec < 1 {
		return fmt.Errorf("state retention must be greater than 0")
	}
	if cfg.ConnectTokenTTLSec < 1 {
		return fmt.Errorf("connect token ttl must be greater than 0")
	}
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("postgres dsn must be set")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)
	slog.SetDefault(logger)

	pool, err := pgclient.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to create postgres client: %w", err)
	}
	defer pool.Close()

	rc, err := redisclient.New(ctx, &redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	roomRepo := postgres.NewRepo(pool)
	connRepo := connInmemory.NewRepo()
	sessionRepo := sessionRedis.NewRepo(rc)

	roomService := room.NewService(roomRepo, connRepo, sessionRepo, &room.Config{
		QueueLimit:      cfg.QueueLimit,
		StateRetention:  time.Duration(cfg.StateRetentionSec) * time.Second,
		ConnectTokenTTL: time.Duration(cfg.ConnectTokenTTLSec) * time.Second,
	})
	identityService := identity.NewService(cfg.Secret)

	controller := controller.NewController(roomService, identityService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	go roomService.RunStateEviction(serverCtx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	slog.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
