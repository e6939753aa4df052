// Command steward runs the autopilot for an entropic instance. It observes
// the run through the HTTP API and resumes, injects or resets it when the
// run pauses, stagnates or saturates.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talgya/entropic/internal/steward"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("ENTROPIC_API_URL", "http://localhost:8080")
	adminKey := os.Getenv("ENTROPIC_ADMIN_KEY")
	intervalSec := envIntOrDefault("STEWARD_INTERVAL", 30)
	window := envIntOrDefault("STEWARD_WINDOW", steward.DefaultWindow)

	if adminKey == "" {
		slog.Error("ENTROPIC_ADMIN_KEY is required")
		os.Exit(1)
	}

	interval := time.Duration(intervalSec) * time.Second
	slog.Info("Entropic steward starting",
		"api_url", apiURL,
		"interval", interval,
		"window", window,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wait for the API before the first cycle.
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	err := steward.WaitForAPI(waitCtx, apiURL, 30*time.Second)
	cancel()
	if err != nil {
		slog.Error("entropic API did not become ready", "error", err)
		os.Exit(1)
	}

	if err := steward.New(apiURL, adminKey, window).Run(ctx, interval); err != nil {
		slog.Error("steward stopped", "error", err)
		os.Exit(1)
	}
	fmt.Println("Steward stopped.")
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
