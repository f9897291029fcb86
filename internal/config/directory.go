package config

import (
	"context"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/selfbot/pkg/log"
)

type DirectoryConfig struct {
	BaseURL string `env:"DIRECTORY_BASE_URL" envDefault:"http://localhost:8089/empengagement"`

	// Identity of the local caller, as known to the directory service.
	// Zero means the caller is anonymous.
	OwnerID   int64  `env:"DIRECTORY_OWNER_ID" envDefault:"0"`
	OwnerName string `env:"DIRECTORY_OWNER_NAME"`
}

// OwnerIDString renders the owner id the way transports pass it around.
// Anonymous callers get an empty string.
func (c DirectoryConfig) OwnerIDString() string {
	if c.OwnerID == 0 {
		return ""
	}
	return strconv.FormatInt(c.OwnerID, 10)
}

func NewDirectoryConfig(ctx context.Context) *DirectoryConfig {
	c := &DirectoryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Directory config")
	}
	return c
}
