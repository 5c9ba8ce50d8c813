package config

import (
	"errors"
	"strings"
	"time"

	cenv "github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr            string
	WebshareProxyUsername string
	WebshareProxyPassword string
	RequestTimeout        time.Duration
	ResolverWorkers       int
	ResolverQueueSize     int
	LogLevel              string
}

type envConfig struct {
	ListenAddr            string `env:"LISTEN_ADDR" envDefault:":8080"`
	WebshareProxyUsername string `env:"WEBSHARE_PROXY_USERNAME"`
	WebshareProxyPassword string `env:"WEBSHARE_PROXY_PASSWORD"`
	RequestTimeoutSeconds int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"20"`
	ResolverWorkers       int    `env:"RESOLVER_WORKERS" envDefault:"8"`
	ResolverQueueSize     int    `env:"RESOLVER_QUEUE" envDefault:"64"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var raw envConfig
	if err := cenv.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:            strings.TrimSpace(raw.ListenAddr),
		WebshareProxyUsername: strings.TrimSpace(raw.WebshareProxyUsername),
		WebshareProxyPassword: strings.TrimSpace(raw.WebshareProxyPassword),
		RequestTimeout:        time.Duration(raw.RequestTimeoutSeconds) * time.Second,
		ResolverWorkers:       raw.ResolverWorkers,
		ResolverQueueSize:     raw.ResolverQueueSize,
		LogLevel:              strings.ToLower(strings.TrimSpace(raw.LogLevel)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT_SECONDS must be > 0")
	}
	if c.ResolverWorkers <= 0 {
		return errors.New("RESOLVER_WORKERS must be > 0")
	}
	if c.ResolverQueueSize < 0 {
		return errors.New("RESOLVER_QUEUE must be >= 0")
	}
	return nil
}

// ProxyCredentials returns the Webshare credentials when both halves are
// configured. A lone username or password is treated as absent.
func (c Config) ProxyCredentials() (username, password string, ok bool) {
	if c.WebshareProxyUsername == "" || c.WebshareProxyPassword == "" {
		return "", "", false
	}
	return c.WebshareProxyUsername, c.WebshareProxyPassword, true
}
