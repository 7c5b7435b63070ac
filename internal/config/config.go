package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"finstat"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Storage struct {
		GraphDir  string `envconfig:"GRAPH_DIR" default:"static/graphs"`
		UploadDir string `envconfig:"UPLOAD_DIR" default:"upload"`
	}

	Upload struct {
		MaxBytes int64 `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
	}

	Sheet struct {
		Name string `envconfig:"SHEET_NAME"`
	}

	Session struct {
		Store   string        `envconfig:"SESSION_STORE" default:"memory"`
		Secret  string        `envconfig:"SESSION_SECRET"`
		TTL     time.Duration `envconfig:"SESSION_TTL" default:"12h"`
		MaxSize int           `envconfig:"SESSION_MAX" default:"256"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"finstat"`
	}

	CORS struct {
		Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
	}

	Log struct {
		Level  slog.Level `envconfig:"LOG_LEVEL" default:"info"`
		Format string     `envconfig:"LOG_FORMAT" default:"text"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Session.Store {
	case SessionStoreMemory, SessionStorePostgres:
	default:
		return nil, fmt.Errorf("invalid SESSION_STORE %q: want %s or %s",
			cfg.Session.Store, SessionStoreMemory, SessionStorePostgres)
	}

	return &cfg, nil
}
