package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Token may stay empty here; the -token flag can supply it at startup.
	Token        string `envconfig:"TELEGRAM_BOT_TOKEN"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"./data/teemixer.db" validate:"required"`
	// DailyTime seeds the invite time (UTC wall clock) for newly added
	// chats; each chat can change its own with /time.
	DailyTime string `envconfig:"DAILY_TIME" default:"08:00" validate:"required"`
	// GroupSize seeds the per-chat group size for newly added chats.
	GroupSize int `envconfig:"DEFAULT_GROUP_SIZE" default:"4" validate:"min=1"`
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read env config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
