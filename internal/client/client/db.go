package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/dmitrijs2005/taskdesk/internal/client/migrations"
	"github.com/dmitrijs2005/taskdesk/internal/dbx"
	"github.com/dmitrijs2005/taskdesk/internal/filex"
)

const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

func dialectFor(driver string) (dbx.Dialect, error) {
	switch driver {
	case DriverSQLite:
		return dbx.DialectSQLite, nil
	case DriverPgx:
		return dbx.DialectPostgres, nil
	}
	return "", fmt.Errorf("unsupported journal driver %q", driver)
}

// goose keeps its base FS and dialect in package state.
var migrateMu sync.Mutex

// RunMigrations applies the embedded journal migrations.
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// InitDatabase opens the journal database and brings its schema up to date.
// For SQLite, dsn is a file path whose parent directory is created if needed.
func InitDatabase(ctx context.Context, driver, dsn string) (*sql.DB, dbx.Dialect, error) {
	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, "", err
	}

	if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := filex.EnsureParentDir(dsn); err != nil {
			return nil, "", err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", err
	}

	if err := RunMigrations(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, "", err
	}
	return db, dialect, nil
}
