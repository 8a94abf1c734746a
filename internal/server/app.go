// Package server wires configuration, storage, the auth layer and the HTTP
// API together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/hicomm/internal/logging"
	"github.com/dmitrijs2005/hicomm/internal/server/auth"
	"github.com/dmitrijs2005/hicomm/internal/server/config"
	"github.com/dmitrijs2005/hicomm/internal/server/httpapi"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hicomm/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	open   func(ctx context.Context, dsn string) (*sql.DB, error)
	rm     repomanager.RepositoryManager
}

// NewApp validates c and prepares an App backed by PostgreSQL.
func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &App{
		config: c,
		logger: logging.NewJSON(os.Stdout, c.LogLevel),
		open:   repomanager.Open,
		rm:     repomanager.NewPostgresRepositoryManager(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// handler builds the HTTP API on top of db.
func (app *App) handler(db *sql.DB) http.Handler {
	us := services.NewUserService(db, app.rm, auth.NewHasher(app.config.BcryptCost))
	bs := services.NewBoardService(db, app.rm)

	codec := auth.NewTokenCodec([]byte(app.config.SecretKey), app.config.TokenTTL)
	resolver := auth.NewSessionResolver(codec, us, app.logger)
	cookie := httpapi.NewSessionCookie(app.config.CookieName(), app.config.Production, resolver)

	return httpapi.NewAPI(us, bs, resolver, cookie, app.logger).Handler()
}

// Run opens and migrates the database, then serves HTTP until ctx is
// cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	db, err := app.open(ctx, app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}()

	if err := app.rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	s := httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger, app.handler(db), app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
