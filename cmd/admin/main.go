// Command admin creates the first hicomm administrator, or promotes an
// existing account. The password is read from the terminal without echo.
//
//	admin -d postgres://... -u root [-n nickname]
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/hicomm/internal/admincli"
	"github.com/dmitrijs2005/hicomm/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	opts, err := admincli.ParseOptions(os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.NewJSON(os.Stderr, "info")
	return admincli.NewApp(opts, os.Stdin, os.Stdout, logger).Run(ctx)
}
