package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/hicomm/internal/flagx"
	"github.com/dmitrijs2005/hicomm/internal/timex"
)

// JSONConfig is the on-disk shape of the config file. Absent fields leave the
// corresponding Config value untouched.
type JSONConfig struct {
	HTTPAddr        *string         `json:"http_addr"`
	DatabaseDSN     *string         `json:"database_dsn"`
	SecretKey       *string         `json:"secret_key"`
	TokenTTL        *timex.Duration `json:"token_ttl"`
	Production      *bool           `json:"production"`
	ServiceName     *string         `json:"service_name"`
	BcryptCost      *int            `json:"bcrypt_cost"`
	LogLevel        *string         `json:"log_level"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
}

// parseJSON overlays the file given with -c/-config, if any.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var c JSONConfig
	if err := json.Unmarshal(b, &c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	c.apply(config)
	return nil
}

func (c *JSONConfig) apply(config *Config) {
	if c.HTTPAddr != nil {
		config.HTTPAddr = *c.HTTPAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.Production != nil {
		config.Production = *c.Production
	}
	if c.ServiceName != nil {
		config.ServiceName = *c.ServiceName
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}
