package admincli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/hicomm/internal/flagx"
	"github.com/dmitrijs2005/hicomm/internal/logging"
	"github.com/dmitrijs2005/hicomm/internal/server/auth"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/repomanager"
)

// Options are the command-line settings of the admin command.
//
// Password is only taken from the environment (HICOMM_ADMIN_PASSWORD or
// INITIAL_ADMIN_PW) so it never shows up in the process list; otherwise it
// is prompted for.
type Options struct {
	DatabaseDSN string
	Username    string
	Nickname    string
	BcryptCost  int
	Password    string
}

// ParseOptions reads flags from args, falling back to the environment.
func ParseOptions(args []string) (Options, error) {
	var o Options
	o.DatabaseDSN, _ = flagx.FirstEnv("HICOMM_DATABASE_DSN", "DATABASE_URL")
	o.Username, _ = flagx.FirstEnv("INITIAL_ADMIN_ID")
	o.Password, _ = flagx.FirstEnv("HICOMM_ADMIN_PASSWORD", "INITIAL_ADMIN_PW")
	o.BcryptCost = auth.DefaultCost

	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.DatabaseDSN, "d", o.DatabaseDSN, "database DSN")
	fs.StringVar(&o.Username, "u", o.Username, "administrator username")
	fs.StringVar(&o.Nickname, "n", DefaultNickname, "nickname for a newly created administrator")
	fs.IntVar(&o.BcryptCost, "cost", o.BcryptCost, "bcrypt cost")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if o.DatabaseDSN == "" {
		return Options{}, errors.New("database DSN is required (-d or HICOMM_DATABASE_DSN)")
	}
	return o, nil
}

type App struct {
	opts   Options
	stdin  *os.File
	in     *bufio.Reader
	out    io.Writer
	open   func(ctx context.Context, dsn string) (*sql.DB, error)
	rm     repomanager.RepositoryManager
	logger logging.Logger
}

func NewApp(opts Options, stdin *os.File, out io.Writer, logger logging.Logger) *App {
	return &App{
		opts:   opts,
		stdin:  stdin,
		in:     bufio.NewReader(stdin),
		out:    out,
		open:   repomanager.Open,
		rm:     repomanager.NewPostgresRepositoryManager(),
		logger: logger,
	}
}

// Run collects missing input, migrates the schema and ensures the
// administrator exists.
func (a *App) Run(ctx context.Context) error {
	username := a.opts.Username
	if username == "" {
		var err error
		if username, err = GetSimpleText(a.in, "Administrator username", a.out); err != nil {
			return fmt.Errorf("read username: %w", err)
		}
	}

	password := []byte(a.opts.Password)
	if len(password) == 0 {
		var err error
		if password, err = GetPassword(int(a.stdin.Fd()), a.in, "Password", a.out); err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}
	defer wipe(password)

	db, err := a.open(ctx, a.opts.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := a.rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	b := NewBootstrapper(db, a.rm, auth.NewHasher(a.opts.BcryptCost), a.logger)
	identity, outcome, err := b.EnsureAdmin(ctx, username, password, a.opts.Nickname)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(a.out, "%s: %s (id %d)\n", outcome, identity.Username, identity.ID)
	return err
}
