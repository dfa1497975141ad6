package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"neoquiz/internal/mockapi/events"
	"neoquiz/internal/mockapi/handler"
	"neoquiz/internal/mockapi/service"
	"neoquiz/internal/mockapi/store"
	"neoquiz/internal/mockapi/store/revocation"
	"neoquiz/internal/mockapi/store/user"
	"neoquiz/internal/mockapi/token"
	"neoquiz/internal/platform/config"
	"neoquiz/internal/platform/httpserver"
	"neoquiz/internal/platform/logger"
	"neoquiz/internal/platform/metrics"
	"neoquiz/internal/platform/redis"
)

const (
	shutdownGrace   = 10 * time.Second
	purgeInterval   = time.Minute
	topicPartitions = 3
)

// purger is implemented by revocation lists that keep expired entries.
type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// main serves the development backend the client talks to, with metrics on a
// separate listener.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mockapi:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.MockAPIFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}

	var users service.UserStore = user.NewInMemory()
	if db != nil {
		users = user.NewPostgres(db)
	}

	revoked, closeRevoked, err := openRevocationList(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer closeRevoked()

	tokens, err := token.New(cfg.JWTSigningKey, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}

	publisher, closePublisher, err := openPublisher(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer closePublisher()

	svc, err := service.New(users, revoked, tokens,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithEventPublisher(publisher),
	)
	if err != nil {
		return err
	}
	seeded, err := svc.SeedTeachers(ctx, service.DefaultTeachers)
	if err != nil {
		return fmt.Errorf("seed teachers: %w", err)
	}
	announceSeed(os.Stderr, seeded)

	h := handler.New(svc, svc, log, m)
	api := httpserver.New(cfg.Addr, h.Router())

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	metricsSrv := httpserver.New(cfg.MetricsAddr, metricsMux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpserver.Run(gctx, api, shutdownGrace, log) })
	g.Go(func() error { return httpserver.Run(gctx, metricsSrv, shutdownGrace, log) })
	if p, ok := revoked.(purger); ok {
		g.Go(func() error { return purgeLoop(gctx, p, log) })
	}
	return g.Wait()
}

// openRevocationList prefers Redis, then Postgres, then memory.
func openRevocationList(ctx context.Context, cfg config.MockAPI, db *sql.DB, log *slog.Logger) (service.RevocationList, func(), error) {
	noop := func() {}
	if cfg.Redis.URL != "" {
		rc, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		log.Info("token revocation list", "backend", "redis")
		return revocation.NewRedisTRL(rc.Client), func() { _ = rc.Close() }, nil
	}
	if db != nil {
		log.Info("token revocation list", "backend", "postgres")
		return revocation.NewPostgresTRL(db), noop, nil
	}
	log.Info("token revocation list", "backend", "memory")
	return revocation.NewInMemoryTRL(), noop, nil
}

// openPublisher produces to Kafka when brokers are configured and logs
// events otherwise. The log publisher also catches events while Kafka is
// unreachable.
func openPublisher(ctx context.Context, cfg config.MockAPI, log *slog.Logger, m *metrics.Metrics) (service.EventPublisher, func(), error) {
	fallback := events.NewLogPublisher(log, m)
	if len(cfg.KafkaBrokers) == 0 {
		return fallback, func() {}, nil
	}

	cl, err := events.NewClient(cfg.KafkaBrokers, cfg.EventsTopic)
	if err != nil {
		return nil, func() {}, err
	}
	if err := events.EnsureTopic(ctx, cl, cfg.EventsTopic, topicPartitions, 1); err != nil {
		log.Warn("could not ensure events topic", "topic", cfg.EventsTopic, "error", err)
	}
	p, err := events.NewKafkaPublisher(cl, cfg.EventsTopic, fallback,
		events.WithLogger(log),
		events.WithMetrics(m),
	)
	if err != nil {
		cl.Close()
		return nil, func() {}, err
	}
	log.Info("publishing account events", "sink", events.SinkKafka, "topic", cfg.EventsTopic)
	return p, p.Close, nil
}

// announceSeed tells the operator how to sign in as a seeded teacher. The
// password is printed to the terminal only; the service logs the count.
func announceSeed(w io.Writer, seeded int) {
	if seeded == 0 {
		return
	}
	fmt.Fprintf(w, "mockapi: seeded %d teachers, sign in with password %q\n", seeded, service.DefaultSeedPassword)
}

func purgeLoop(ctx context.Context, p purger, log *slog.Logger) error {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				log.Warn("purging revoked tokens failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("purged revoked tokens", "count", n)
			}
		}
	}
}
