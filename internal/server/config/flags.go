package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/hicomm/internal/flagx"
)

// parseFlags overlays command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-t int      token lifetime, hours
//	-n string   service name (cookie prefix)
//	-l string   log level
//	-prod       production mode
//
// Only these flags are looked at, so -c/-config and flags of other
// components do not collide.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-n", "-l", "-prod"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	ttlHours := fs.Int("t", 0, "token lifetime (in hours)")
	fs.StringVar(&config.ServiceName, "n", config.ServiceName, "service name")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.Production, "prod", config.Production, "production mode")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenTTL = time.Duration(*ttlHours) * time.Hour
		}
	})
	return nil
}
