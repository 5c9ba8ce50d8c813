package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ytscribe/internal/config"
	"ytscribe/internal/pipe"
	"ytscribe/internal/resolver"
	"ytscribe/internal/upstream/youtube"

	"github.com/joho/godotenv"
)

// ytscribe-pipe speaks the newline-delimited JSON protocol on stdin/stdout.
// All logging goes to stderr so stdout stays a clean response channel.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if username, password, ok := cfg.ProxyCredentials(); ok {
		transport.Proxy = http.ProxyURL(youtube.WebshareProxyURL(username, password))
		logger.Info("webshare proxy enabled")
	} else if cfg.WebshareProxyUsername != "" || cfg.WebshareProxyPassword != "" {
		logger.Warn("incomplete webshare proxy credentials, using direct access")
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout, Transport: transport}
	resolverService := resolver.New(youtube.New(httpClient))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("pipe worker started")
	if err := pipe.Run(ctx, os.Stdin, os.Stdout, resolverService, logger); err != nil {
		logger.Error("pipe loop failed", "error", err)
		os.Exit(1)
	}
	logger.Info("pipe worker stopped")
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
}
