package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, populated from the environment.
type Config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"kavostack.db"`
	PepperFile   string `env:"PEPPER_FILE" envDefault:"pepper"`

	// SessionSecret signs session tokens. There is no safe default.
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// Seed data applied on boot. The admin account is only created when all
	// three admin values are present.
	AdminEmail       string `env:"ADMIN_EMAIL"`
	AdminPassword    string `env:"ADMIN_PASSWORD"`
	AdminName        string `env:"ADMIN_NAME"`
	CreateDemoClient bool   `env:"CREATE_DEMO_CLIENT" envDefault:"false"`

	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
