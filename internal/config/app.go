package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/selfbot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"SELFBOT_RUNTIME_PATH" envDefault:".selfbot"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"true"`

	// Context Management
	HistoryWindowSize int `env:"HISTORY_WINDOW_SIZE" envDefault:"10"`
	PromptTokenBudget int `env:"PROMPT_TOKEN_BUDGET" envDefault:"1024"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "selfbot.db")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
