package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects the database, a local sqlite file or a remote libsql database.
type Config struct {
	// path to a sqlite file, `:memory:` is allowed
	File string `json:"file"`
	// libsql://, https:// or wss:// url of a remote database, takes precedence over File
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// Open opens the configured database and applies the schema.
func Open(ctx context.Context, config Config) (*sql.DB, error) {
	var (
		database *sql.DB
		err      error
	)
	switch {
	case config.Url != "":
		database, err = openLibsql(config)
	case config.File != "":
		database, err = OpenSqlite(config.File)
	default:
		return nil, wrapOpenDB(fmt.Errorf("neither a file nor a url was specified"))
	}
	if err != nil {
		return nil, err
	}

	err = Migrate(ctx, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func OpenSqlite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// a single connection serializes writers, WAL keeps readers off their back
	database.SetMaxOpenConns(1)
	_, err = database.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		database.Close()
		return nil, wrapOpenDB(err)
	}
	return database, nil
}

func openLibsql(config Config) (*sql.DB, error) {
	dsn := config.Url
	if config.AuthToken != "" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn = fmt.Sprintf("%s%sauthToken=%s", dsn, sep, config.AuthToken)
	}
	database, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	database.SetMaxOpenConns(1)
	return database, nil
}

// Migrate applies the schema, every statement in it is idempotent.
func Migrate(ctx context.Context, database *sql.DB) error {
	_, err := database.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}
