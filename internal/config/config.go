// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database drivers accepted in DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // APP_ENV (dev, test, prod)
	Port           string // APP_PORT
	LogLevel       string // LOG_LEVEL, overrides the env default
	DBDriver       string // DB_DRIVER: mysql or sqlite3
	DBUser         string
	DBPass         string // may be empty
	DBHost         string
	DBPort         string
	DBName         string
	DBPath         string // sqlite3 file
	DBMigrate      bool   // apply embedded migrations at startup
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
	RabbitMQURL    string // empty disables event publishing
	BookingLogPath string // consumer output file
	SeedDemoData   bool
	ShutdownWait   time.Duration
}

// Load reads the environment. Every missing or malformed required variable
// is reported in the returned error.
func Load() (Config, error) {
	l := &loader{}
	cfg := Config{
		Env:            l.must("APP_ENV"),
		Port:           l.must("APP_PORT"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		DBDriver:       strings.ToLower(envStr("DB_DRIVER", DriverMySQL)),
		DBMigrate:      envBool("DB_MIGRATE", true),
		JWTSecret:      l.must("JWT_SECRET"),
		AccessTTLMin:   l.mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: l.mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		BookingLogPath: envStr("BOOKING_LOG_PATH", "logs/booking.log"),
		SeedDemoData:   envBool("SEED_DEMO_DATA", false),
		ShutdownWait:   envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	switch cfg.DBDriver {
	case DriverMySQL:
		cfg.DBUser = l.must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = l.must("DB_PORT")
		cfg.DBName = l.must("DB_NAME")
	case DriverSQLite:
		cfg.DBPath = envStr("DB_PATH", "pilates.db")
	default:
		l.errs = append(l.errs, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver))
	}

	if err := errors.Join(l.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type loader struct {
	errs []error
}

func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		l.errs = append(l.errs, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

func (l *loader) mustInt(key string) int {
	s := l.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid int for %s: %q", key, s))
	}
	return n
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
