package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/internal/api"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/internal/board"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/internal/suggest"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/resilience"
	"github.com/jonboulle/clockwork"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting board service", "port", cfg.Server.Port)

	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("redis unavailable", "addr", cfg.Redis.Addr, "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(m, cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.BoardEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.BoardEvents)
	}

	var tracker board.Tracker
	if collector != nil {
		tracker = collector
	}

	boardSvc := board.NewService(redisClient, board.Config{
		ScorePerVote:     cfg.Board.ScorePerVote,
		VotingWindow:     cfg.Board.VotingWindow,
		GroupCacheTTL:    cfg.Board.GroupCacheTTL,
		PruneEmptyGroups: cfg.Board.PruneEmptyGroups,
	}, clockwork.NewRealClock(), tracker)

	engine := suggest.NewEngine(redisClient, cfg.Suggest.MaxResults, m)
	dict := suggest.NewDictionary(redisClient, cfg.Suggest.BatchSize)
	cache := suggest.NewCache(redisClient, cfg.Suggest.CacheTTL)
	breaker := resilience.NewCircuitBreaker("suggest-store", resilience.CircuitBreakerConfig{})

	checker := health.NewChecker()
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := api.New(boardSvc, engine, cache, dict, breaker, m, tracker, cfg.Board.TopLimit, cfg.Board.MaxLimit)
	router := api.NewRouter(h, checker, m, cfg.Server.WriteTimeout)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("board service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("board service stopped")
}
