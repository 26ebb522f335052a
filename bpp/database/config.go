package database

import (
	"errors"

	"github.com/benefits-network/benefits-bpp/conf"
	"github.com/benefits-network/benefits-bpp/log"
)

type Config struct {
	MaxOpenConns       int `conf:"BPP_DB_MAX_OPEN_CONNS" conf_default:"20"`
	MaxIdleConns       int `conf:"BPP_DB_MAX_IDLE_CONNS" conf_default:"10"`
	ConnMaxLifetimeMin int `conf:"BPP_DB_CONN_MAX_LIFETIME_MIN" conf_default:"5"`
	ConnMaxIdleTimeMin int `conf:"BPP_DB_CONN_MAX_IDLE_TIME_MIN" conf_default:"30"`

	DatabaseURL string `conf:"DATABASE_URL"`
}

func LoadConfig() (cfg *Config, err error) {
	cfg = &Config{}
	if err := conf.Checkout(cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("invalid config, DatabaseURL must be set")
	}

	log.API.Info("Successfully loaded configuration for Database.")

	return cfg, nil
}
