package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Credential store backends accepted by NEOQUIZ_STORE.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

const (
	DefaultAPIURL      = "http://localhost:8000/api/v1"
	DefaultHTTPTimeout = 10 * time.Second
	DefaultSplashDelay = 2500 * time.Millisecond
	DefaultWelcomeWait = 3000 * time.Millisecond
)

// Log selects the slog handler.
type Log struct {
	Level  string
	Format string
}

// RedisConfig describes the optional Redis connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client configures the terminal client.
type Client struct {
	APIURL       string
	HTTPTimeout  time.Duration
	SplashDelay  time.Duration
	WelcomeDelay time.Duration
	Store        string
	StorePath    string
	MetricsAddr  string
	Redis        RedisConfig
	Log          Log
}

// MockAPI configures the development backend.
type MockAPI struct {
	Addr           string
	MetricsAddr    string
	JWTSigningKey  string
	AccessTokenTTL time.Duration
	DatabaseURL    string
	KafkaBrokers   []string
	EventsTopic    string
	Redis          RedisConfig
	Log            Log
}

// LoadDotEnv reads KEY=VALUE files into the environment without overriding
// variables already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ClientFromEnv builds the client config from NEOQUIZ_* variables.
func ClientFromEnv() (Client, error) {
	var errs []error
	cfg := Client{
		APIURL:       strings.TrimRight(getString("NEOQUIZ_API_URL", DefaultAPIURL), "/"),
		HTTPTimeout:  getDuration("NEOQUIZ_HTTP_TIMEOUT", DefaultHTTPTimeout, &errs),
		SplashDelay:  getDuration("NEOQUIZ_SPLASH_DELAY", DefaultSplashDelay, &errs),
		WelcomeDelay: getDuration("NEOQUIZ_WELCOME_DELAY", DefaultWelcomeWait, &errs),
		Store:        strings.ToLower(getString("NEOQUIZ_STORE", StoreFile)),
		StorePath:    getString("NEOQUIZ_STORE_PATH", defaultStorePath()),
		MetricsAddr:  getString("NEOQUIZ_METRICS_ADDR", ""),
		Redis:        redisFromEnv(&errs),
		Log:          logFromEnv("warn"),
	}

	switch cfg.Store {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if cfg.Redis.URL == "" {
			errs = append(errs, errors.New("NEOQUIZ_STORE=redis requires REDIS_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("NEOQUIZ_STORE: unknown backend %q", cfg.Store))
	}
	if cfg.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("NEOQUIZ_HTTP_TIMEOUT must be positive"))
	}
	return cfg, errors.Join(errs...)
}

// MockAPIFromEnv builds the mock API config.
func MockAPIFromEnv() (MockAPI, error) {
	var errs []error
	cfg := MockAPI{
		Addr:           getString("MOCKAPI_ADDR", ":8000"),
		MetricsAddr:    getString("MOCKAPI_METRICS_ADDR", ":9090"),
		JWTSigningKey:  getString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL", time.Hour, &errs),
		DatabaseURL:    getString("DATABASE_URL", ""),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		EventsTopic:    getString("EVENTS_TOPIC", "neoquiz.account-events"),
		Redis:          redisFromEnv(&errs),
		Log:            logFromEnv("info"),
	}
	if cfg.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	return cfg, errors.Join(errs...)
}

func redisFromEnv(errs *[]error) RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     getInt("REDIS_POOL_SIZE", 10, errs),
		MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 1, errs),
		DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second, errs),
		ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second, errs),
		WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second, errs),
	}
}

// logFromEnv reads LOG_LEVEL and LOG_FORMAT. The terminal client defaults to
// warn so log lines do not interleave with the screens.
func logFromEnv(level string) Log {
	return Log{
		Level:  getString("LOG_LEVEL", level),
		Format: getString("LOG_FORMAT", "text"),
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".neoquiz", "credentials.json")
	}
	return filepath.Join(dir, "neoquiz", "credentials.json")
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getDuration accepts Go durations ("2.5s") or bare milliseconds ("2500").
func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func getInt(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
