package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/assignflow/core"
	appfs "github.com/trezcool/assignflow/fs"
)

const migrationsDir = "migrations"

// URL is the connection string of the configured database.
func URL(conf *core.Config, dbName string) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.DatabaseAddress(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(conf.Database.Engine, URL(conf, conf.Database.Name))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return db, nil
}

// Ping waits for the database to be ready. Waits 100ms longer between each attempt.
func Ping(ctx context.Context, db *sqlx.DB, maxAttempts int) error {
	var err error
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

// CreateIfNotExist creates the application database, connecting to the `postgres` maintenance database.
func CreateIfNotExist(ctx context.Context, conf *core.Config) error {
	db, err := sqlx.Open(conf.Database.Engine, URL(conf, "postgres"))
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = Ping(ctx, db, 30); err != nil {
		return errors.Wrap(err, "pinging database")
	}

	var exists bool
	if err = db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", conf.Database.Name); err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !exists {
		// identifiers cannot be bound
		if _, err = db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %q", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// Migrate runs a goose command (up, down, status, ...) with the embedded migrations.
func Migrate(db *sqlx.DB, command string, args ...string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := goose.Run(command, db.DB, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "migrating database (%s)", command)
	}
	return nil
}
