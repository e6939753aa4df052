package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/entropic/internal/phi"
)

// options holds every runtime setting. Flags default from the environment.
type options struct {
	seed         int64
	interval     time.Duration
	dbPath       string
	apiPort      int
	adminKey     string
	logFile      string
	logLevel     string
	plain        bool
	randomOrgKey string
}

func (o *options) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int64Var(&o.seed, "seed", envInt64OrDefault("ENTROPIC_SEED", 0), "Random seed (0 = seed from the clock)")
	f.DurationVar(&o.interval, "interval", envDurationOrDefault("ENTROPIC_INTERVAL", phi.TickInterval), "Tick interval")
	f.StringVar(&o.dbPath, "db", envOrDefault("ENTROPIC_DB", ""), "SQLite journal path (empty = no journal)")
	f.IntVar(&o.apiPort, "api-port", envIntOrDefault("ENTROPIC_API_PORT", 0), "HTTP API port (0 = no API)")
	f.StringVar(&o.adminKey, "admin-key", envOrDefault("ENTROPIC_ADMIN_KEY", ""), "Bearer token for POST endpoints")
	f.StringVar(&o.logFile, "log-file", envOrDefault("ENTROPIC_LOG_FILE", "entropic.log"), "Log file (the dashboard owns the terminal)")
	f.StringVar(&o.logLevel, "log-level", envOrDefault("ENTROPIC_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	f.BoolVar(&o.plain, "plain", false, "Line-based prompt instead of the dashboard; logs go to stderr")
	f.StringVar(&o.randomOrgKey, "random-org-key", envOrDefault("RANDOM_ORG_API_KEY", ""), "random.org API key for true randomness")
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// setupLogging installs the default slog logger. The returned func closes
// the log file, if any.
func setupLogging(opts options) (func(), error) {
	level, err := parseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if !opts.plain && opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	} else if !opts.plain {
		w = io.Discard
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return closeFn, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envInt64OrDefault(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func envDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
