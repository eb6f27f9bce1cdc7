// Package sampledb provisions the bundled demo database used by
// `askdb init --sample` and the quick-start walkthrough: a small retail
// data set with customers, orders and products.
package sampledb

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // sqlite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// DefaultPath is where Create writes the demo database unless told otherwise.
const DefaultPath = "sample_database.db"

// Create writes a ready-to-query demo database at path. Any existing file at
// path is replaced so repeated runs always start from the same data.
func Create(path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sample database: %w", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply sample data: %w", err)
	}

	// The demo database is regenerated wholesale, never migrated in place,
	// so the version bookkeeping does not ship with it.
	if _, err := db.Exec(`DROP TABLE IF EXISTS goose_db_version`); err != nil {
		return fmt.Errorf("drop migration bookkeeping: %w", err)
	}

	logger.Info("sample database created", slog.String("path", path))
	return nil
}
