package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the process configuration, populated from the environment.
type Config struct {
	ServiceName       string `envconfig:"SERVICE_NAME" default:"orderflow"`
	Env               string `envconfig:"ENV" default:"dev"`
	HTTPAddr          string `envconfig:"HTTP_ADDR" default:":8080"`
	LogFile           string `envconfig:"LOG_FILE"`
	LowStockThreshold int    `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
