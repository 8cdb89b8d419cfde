// Package postgres implements the attendance stores on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Config struct {
	URL            string
	MaxOpenConns   int
	ConnectTimeout time.Duration
}

// Store implements store.Store backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var (
	_ store.Store          = (*Store)(nil)
	_ store.SchemaReporter = (*Store)(nil)
)

// New wraps an existing handle without running migrations.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects, sizes the pool, and applies pending migrations.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("postgres: database URL is required")
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, store.Unavailable("ping database", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return New(db), nil
}

// Migrate applies the embedded schema with golang-migrate.
func Migrate(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reads golang-migrate's bookkeeping row. A dirty version
// means a migration failed halfway and needs manual repair.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var (
		v     int
		dirty bool
	)
	err := s.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&v, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, store.Unavailable("SchemaVersion", err)
	}
	if dirty {
		return v, fmt.Errorf("postgres: schema version %d is dirty", v)
	}
	return v, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return store.Unavailable("Ping", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
