package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/comments"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/posts"
	"github.com/dmitrijs2005/hicomm/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	var _ RepositoryManager = NewPostgresRepositoryManager()
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager()

	if _, ok := m.Users(db).(*users.PostgresRepository); !ok {
		t.Fatal("Users() is not a postgres repository")
	}
	if _, ok := m.Posts(db).(*posts.PostgresRepository); !ok {
		t.Fatal("Posts() is not a postgres repository")
	}
	if _, ok := m.Comments(db).(*comments.PostgresRepository); !ok {
		t.Fatal("Comments() is not a postgres repository")
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	orig := sqlOpen
	defer func() { sqlOpen = orig }()

	var gotDriver, gotDSN string
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return db, nil
	}

	mock.ExpectPing()
	got, err := Open(context.Background(), "postgres://localhost/hicomm")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got != db || gotDriver != "pgx" || gotDSN != "postgres://localhost/hicomm" {
		t.Fatalf("unexpected open: driver=%q dsn=%q", gotDriver, gotDSN)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpen_PingError(t *testing.T) {
	db, mock := newDB(t)

	orig := sqlOpen
	defer func() { sqlOpen = orig }()
	sqlOpen = func(string, string) (*sql.DB, error) { return db, nil }

	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	if _, err := Open(context.Background(), "dsn"); err == nil {
		t.Fatal("expected ping error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpen_DriverError(t *testing.T) {
	orig := sqlOpen
	defer func() { sqlOpen = orig }()
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("no driver") }

	if _, err := Open(context.Background(), "dsn"); err == nil {
		t.Fatal("expected open error")
	}
}
