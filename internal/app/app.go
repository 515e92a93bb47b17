package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sharetube/watchparty/internal/controller"
	"github.com/sharetube/watchparty/internal/metrics"
	roomInmemory "github.com/sharetube/watchparty/internal/repository/room/inmemory"
	statsInmemory "github.com/sharetube/watchparty/internal/repository/stats/inmemory"
	statsRedis "github.com/sharetube/watchparty/internal/repository/stats/redis"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/redisclient"
)

const shutdownTimeout = 30 * time.Second

type AppConfig struct {
	Host               string        `json:"host"`
	Port               int           `json:"port"`
	LogLevel           string        `json:"log_level"`
	CORSAllowedOrigins []string      `json:"cors_allowed_origins"`
	DeliveryBuffer     int           `json:"delivery_buffer"`
	DeliveryTimeout    time.Duration `json:"delivery_timeout"`
	RedisHost          string        `json:"redis_host"`
	RedisPort          int           `json:"redis_port"`
	RedisPassword      string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return errors.New("at least one cors allowed origin is required")
	}
	if cfg.DeliveryBuffer < 1 {
		return fmt.Errorf("delivery buffer must be greater than 0, got %d", cfg.DeliveryBuffer)
	}
	if cfg.DeliveryTimeout <= 0 {
		return fmt.Errorf("delivery timeout must be greater than 0, got %s", cfg.DeliveryTimeout)
	}
	if cfg.RedisHost != "" && (cfg.RedisPort < 1 || cfg.RedisPort > 65535) {
		return fmt.Errorf("redis port must be between 1 and 65535, got %d", cfg.RedisPort)
	}

	return nil
}

func parseLogLevel(level string) (slog.Level, error) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return logLevel, nil
}

func newLogger(level slog.Level) *slog.Logger {
	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		}),
	}

	return slog.New(&h)
}

type iStatsRepo interface {
	Incr(ctx context.Context, counter string) error
	GetAll(ctx context.Context) (map[string]int64, error)
}

// NewHandler wires repositories, the room service and the controller.
func NewHandler(cfg *AppConfig, statsRepo iStatsRepo, logger *slog.Logger) http.Handler {
	roomRepo := roomInmemory.NewRepo(logger)
	m := metrics.New(roomRepo.Count)
	roomService := room.NewService(roomRepo, statsRepo, m, logger, &room.Config{
		DeliveryBuffer:  cfg.DeliveryBuffer,
		DeliveryTimeout: cfg.DeliveryTimeout,
	})

	return controller.NewController(roomService, logger, &controller.Config{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsHandler:     m.Handler(),
	}).GetMux()
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel, _ := parseLogLevel(cfg.LogLevel)
	logger := newLogger(logLevel)

	var statsRepo iStatsRepo = statsInmemory.NewRepo()
	if cfg.RedisHost != "" {
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Port:     cfg.RedisPort,
			Host:     cfg.RedisHost,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer rc.Close()

		statsRepo = statsRedis.NewRepo(rc)
	} else {
		logger.InfoContext(ctx, "redis host is not set, keeping stats in memory")
	}

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: NewHandler(cfg, statsRepo, logger),
	}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)
	defer serverStopCtx()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	shutdownErr := make(chan error, 1)
	go func() {
		<-sigCtx.Done()
		logger.InfoContext(serverCtx, "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(serverCtx), shutdownTimeout)
		defer cancel()

		shutdownErr <- server.Shutdown(shutdownCtx)
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-serverCtx.Done()

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
