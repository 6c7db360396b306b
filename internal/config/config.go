package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grade fetcher service.
type Config struct {
	AppName       string
	AppEnv        string
	AppPort       string
	DatabaseURL   string
	RedisURL      string
	NATSURL       string
	GradeSubject  string
	JWTSecret     string
	ProxyHTTP     string
	ProxyHTTPS    string
	AuthTimeout   time.Duration
	FetchTimeout  time.Duration
	GradeCacheTTL time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Proxies returns the outbound proxy URLs keyed by scheme, omitting empty entries.
func (c Config) Proxies() map[string]string {
	proxies := map[string]string{}
	if c.ProxyHTTP != "" {
		proxies["http"] = c.ProxyHTTP
	}
	if c.ProxyHTTPS != "" {
		proxies["https"] = c.ProxyHTTPS
	}
	return proxies
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADEFETCHER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Grade Fetcher API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("grade.subject", "grades.fetched")
	v.SetDefault("auth.timeout", "10s")
	v.SetDefault("fetch.timeout", "25s")
	v.SetDefault("grade.cache_ttl", "5m")

	authTimeout, err := parseDuration(v.GetString("auth.timeout"), 10*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid auth timeout: %w", err)
	}

	fetchTimeout, err := parseDuration(v.GetString("fetch.timeout"), 25*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid fetch timeout: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("grade.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid grade cache ttl: %w", err)
	}

	cfg := Config{
		AppName:       v.GetString("app.name"),
		AppEnv:        v.GetString("app.env"),
		AppPort:       v.GetString("app.port"),
		DatabaseURL:   v.GetString("database.url"),
		RedisURL:      v.GetString("redis.url"),
		NATSURL:       v.GetString("nats.url"),
		GradeSubject:  v.GetString("grade.subject"),
		JWTSecret:     v.GetString("jwt.secret"),
		ProxyHTTP:     v.GetString("proxy.http"),
		ProxyHTTPS:    v.GetString("proxy.https"),
		AuthTimeout:   authTimeout,
		FetchTimeout:  fetchTimeout,
		GradeCacheTTL: cacheTTL,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
