package config

import (
	"errors"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config — настройки сервера из переменных окружения с префиксом AULA_.
type Config struct {
	Port        int    `envconfig:"PORT" default:"3000"`
	DBConn      string `envconfig:"DB_CONN" required:"true"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
}

// Load читает .env (если файл есть) и собирает Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("File .env not found, using system environment variables")
	}

	var cfg Config
	if err := envconfig.Process("aula", &cfg); err != nil {
		return Config{}, err
	}
	// envconfig считает пустую, но выставленную переменную заданной
	if cfg.DBConn == "" {
		return Config{}, errors.New("AULA_DB_CONN is required")
	}
	return cfg, nil
}
