package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string        `env:"DATABASE_URL" envDefault:"postgresql://postgres@localhost:5432/churchops"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"your-super-secret-key-change-in-production"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	ServerPort    string        `env:"SERVER_PORT" envDefault:"8080"`
	AdminEmail    string        `env:"ADMIN_EMAIL" envDefault:"admin@localhost"`
	AdminPassword string        `env:"ADMIN_PASSWORD" envDefault:"admin"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`

	// StrictAssignments wraps the assignment validation pipeline plus the
	// final insert in one transaction. Off by default: the unwrapped pipeline
	// is the reference behavior, race window included.
	StrictAssignments bool `env:"STRICT_ASSIGNMENTS" envDefault:"false"`
}

func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
