package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Port string `env:"PORT" envDefault:"5280"`

		// Origins allowed by the CORS middleware, comma separated.
		AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	}

	Database struct {
		Path string `env:"DB_PATH" envDefault:"database/imobiliaria.db"`
	}

	Auth struct {
		JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
		AdminUser string `env:"ADMIN_USER" envDefault:"admin"`

		// Bcrypt hash of the admin password.
		AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	}

	Views struct {
		// One view count per (IP, property) within this window.
		RateWindow time.Duration `env:"VIEW_RATE_WINDOW" envDefault:"5m"`
	}

	Uploads struct {
		Dir        string `env:"UPLOAD_DIR" envDefault:"uploads"`
		PublicPath string `env:"UPLOAD_PUBLIC_PATH" envDefault:"/uploads"`
	}

	LeadQueue struct {
		// Buffered channel capacity before Push starts failing
		BufferSize int `env:"LEAD_QUEUE_SIZE" envDefault:"256"`

		// Maximum number of leads to accumulate before flushing a batch
		MaxBatchSize int `env:"LEAD_BATCH_MAX_SIZE" envDefault:"20"`

		// Maximum time to wait before flushing a non-full batch (in seconds)
		MaxBatchWaitTime int `env:"LEAD_BATCH_WAIT_TIME" envDefault:"5"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"LEAD_BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"LEAD_BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine; the environment may be set by the host.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
