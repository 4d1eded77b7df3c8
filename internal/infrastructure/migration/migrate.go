// Package migration applies the versioned ledger schema to PostgreSQL.
//
// The SQL files are embedded in the binary. sqlite databases used in tests and
// local runs are migrated with gorm's AutoMigrate instead.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var schemaFS embed.FS

// Schema opens the embedded migration files
func Schema() (source.Driver, error) {
	src, err := iofs.New(schemaFS, "sql")
	if err != nil {
		return nil, fmt.Errorf("open embedded schema: %w", err)
	}
	return src, nil
}

// Status is the schema version recorded in schema_migrations. Dirty means a
// migration failed halfway and the schema needs Force after a manual fix.
type Status struct {
	Version uint
	Dirty   bool
}

func (s Status) String() string {
	if s.Dirty {
		return fmt.Sprintf("version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("version %d", s.Version)
}

// Migrator moves one PostgreSQL database along the embedded schema
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New wraps an open connection. Close releases it together with the migrator.
func New(db *sql.DB, log *zap.Logger) (*Migrator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	src, err := Schema()
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	log = log.Named("migration")
	m.Log = migrateLogger{log}
	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	return mg.run("up", mg.m.Up)
}

// Down reverts every applied migration, dropping the ledger tables
func (mg *Migrator) Down() error {
	return mg.run("down", mg.m.Down)
}

// Steps applies n migrations, reverting when n is negative
func (mg *Migrator) Steps(n int) error {
	return mg.run(fmt.Sprintf("steps %d", n), func() error { return mg.m.Steps(n) })
}

// Force records version without running anything. Use only to clear a dirty state.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Version reports the current schema version, zero on an empty database
func (mg *Migrator) Version() (Status, error) {
	version, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return Status{}, nil
	case err != nil:
		return Status{}, fmt.Errorf("read schema version: %w", err)
	}
	return Status{Version: version, Dirty: dirty}, nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (mg *Migrator) run(name string, step func() error) error {
	before, err := mg.Version()
	if err != nil {
		return err
	}
	err = step()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info("Schema already current", zap.String("migration", name), zap.Uint("version", before.Version))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", name, err)
	}
	after, err := mg.Version()
	if err != nil {
		return err
	}
	mg.log.Info("Schema migrated",
		zap.String("migration", name),
		zap.Uint("from", before.Version),
		zap.Uint("to", after.Version),
	)
	return nil
}

// migrateLogger sends golang-migrate's progress lines to zap at debug level
type migrateLogger struct {
	log *zap.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.log.Core().Enabled(zap.DebugLevel)
}
