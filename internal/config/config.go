package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type AppConfig struct {
	// Server
	HTTPAddr string
	Env      string

	// Logging
	LogLevel  string
	LogFormat string

	// Storage
	StorageBackend string
	DatabaseURL    string

	// Redis
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Column layouts survive restarts when enabled
	ViewPersistence bool
	ViewTTL         time.Duration

	// Identity provider; an empty key path trusts the X-Actor header
	JWTPublicKeyPath string
	JWTIssuer        string
	JWTAudience      string

	CORSAllowedOrigins []string
	SeedDemoData       bool
}

var defaults = map[string]any{
	"HTTP_ADDR":            ":8000",
	"APP_ENV":              "development",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "console",
	"STORAGE_BACKEND":      BackendMemory,
	"DATABASE_URL":         "",
	"REDIS_ADDR":           "",
	"REDIS_PASS":           "",
	"REDIS_DB":             0,
	"VIEW_PERSISTENCE":     false,
	"VIEW_TTL":             "720h",
	"JWT_PUBLIC_KEY_PATH":  "",
	"JWT_ISSUER":           "",
	"JWT_AUDIENCE":         "",
	"CORS_ALLOWED_ORIGINS": "*",
	"SEED_DEMO_DATA":       false,
}

// Load reads an optional configs/config.yaml and then the environment,
// which wins over the file.
func Load() (AppConfig, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("error reading config: %w", err)
		}
	}

	cfg := AppConfig{
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		Env:                v.GetString("APP_ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		StorageBackend:     strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPass:          v.GetString("REDIS_PASS"),
		RedisDB:            v.GetInt("REDIS_DB"),
		ViewPersistence:    v.GetBool("VIEW_PERSISTENCE"),
		ViewTTL:            v.GetDuration("VIEW_TTL"),
		JWTPublicKeyPath:   v.GetString("JWT_PUBLIC_KEY_PATH"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		JWTAudience:        v.GetString("JWT_AUDIENCE"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		SeedDemoData:       v.GetBool("SEED_DEMO_DATA"),
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c AppConfig) Validate() error {
	var errs []error
	switch c.StorageBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}
	if c.ViewPersistence && c.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required when VIEW_PERSISTENCE is enabled"))
	}
	if c.ViewTTL < 0 {
		errs = append(errs, errors.New("VIEW_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
