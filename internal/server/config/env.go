package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/hicomm/internal/flagx"
)

// parseEnv overlays environment variables. The unprefixed names
// (JWT_SECRET, DATABASE_URL, APP_ENV) are accepted for deployments that
// already export them.
func parseEnv(config *Config) error {
	if v, ok := flagx.FirstEnv("HICOMM_HTTP_ADDR"); ok {
		config.HTTPAddr = v
	}
	if v, ok := flagx.FirstEnv("HICOMM_DATABASE_DSN", "DATABASE_URL"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := flagx.FirstEnv("HICOMM_JWT_SECRET", "JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := flagx.FirstEnv("HICOMM_TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HICOMM_TOKEN_TTL: %w", err)
		}
		config.TokenTTL = d
	}
	if v, ok := flagx.FirstEnv("HICOMM_ENV", "APP_ENV"); ok {
		config.Production = strings.EqualFold(v, "production")
	}
	if v, ok := flagx.FirstEnv("HICOMM_SERVICE_NAME"); ok {
		config.ServiceName = v
	}
	if v, ok := flagx.FirstEnv("HICOMM_BCRYPT_COST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HICOMM_BCRYPT_COST: %w", err)
		}
		config.BcryptCost = n
	}
	if v, ok := flagx.FirstEnv("HICOMM_LOG_LEVEL"); ok {
		config.LogLevel = v
	}
	return nil
}
