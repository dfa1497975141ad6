package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"neoquiz/internal/auth/client"
	"neoquiz/internal/credentials"
	"neoquiz/internal/flow/controller"
	"neoquiz/internal/flow/models"
	"neoquiz/internal/platform/config"
	"neoquiz/internal/platform/httpserver"
	"neoquiz/internal/platform/logger"
	"neoquiz/internal/platform/metrics"
	"neoquiz/internal/platform/redis"
	"neoquiz/internal/terminal"
)

// main wires the credential store, the auth client and the flow controller,
// then hands the terminal to the user until they quit.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "neoquiz:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.ClientFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, reg, log)
	}

	auth, err := client.New(cfg.APIURL, store,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithLogger(log),
		client.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	flow, err := controller.New(auth,
		controller.WithLogger(log),
		controller.WithMetrics(m),
		controller.WithDelays(cfg.SplashDelay, cfg.WelcomeDelay),
	)
	if err != nil {
		return err
	}
	defer flow.Close()

	term := terminal.New(flow, os.Stdin, os.Stdout, terminal.WithLogger(log))
	unsubscribe := flow.Subscribe(term.Render)
	defer unsubscribe()

	initial, err := initialRoute(ctx, store, log)
	if err != nil {
		return err
	}
	if _, err := flow.Start(initial); err != nil {
		return err
	}
	return term.Run(ctx)
}

// openStore picks the credential backend named by NEOQUIZ_STORE.
func openStore(ctx context.Context, cfg config.Client) (credentials.Store, func(), error) {
	noop := func() {}
	switch cfg.Store {
	case config.StoreMemory:
		return credentials.NewInMemory(), noop, nil
	case config.StoreRedis:
		rc, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		store, err := credentials.NewRedis(rc.Client)
		if err != nil {
			_ = rc.Close()
			return nil, noop, err
		}
		return store, func() { _ = rc.Close() }, nil
	default:
		store, err := credentials.NewFile(cfg.StorePath)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	}
}

// initialRoute resumes at Home when a session with a known role is stored.
func initialRoute(ctx context.Context, store credentials.Store, log *slog.Logger) (models.Route, error) {
	session, err := credentials.LoadSession(ctx, store)
	if err != nil {
		log.Warn("could not read stored session, starting fresh", "error", err)
	}
	if session.Authenticated() && session.User != nil {
		if role, err := models.ParseRole(session.User.Role); err == nil {
			log.Info("resuming session", "user_id", session.User.ID, "role", role)
			return models.NewRoute(models.HomeParams{Role: role})
		}
	}
	return models.NewRoute(models.SplashParams{})
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := httpserver.New(addr, mux)
	if err := httpserver.Run(ctx, srv, 2*time.Second, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("metrics listener stopped", "error", err)
	}
}
