// Package sqlite implements the attendance stores on modernc.org/sqlite.
// Reads go straight to the pool; writes are serialized through db.Worker.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
	dbpkg "github.com/liyanaidrs/CPC357-Assign2/internal/db"
)

type Store struct {
	db     *sql.DB
	writer *dbpkg.Worker
	owned  bool
}

var (
	_ store.Store          = (*Store)(nil)
	_ store.SchemaReporter = (*Store)(nil)
)

// New wraps an already-migrated database. The caller keeps ownership of db
// and writer; Close is a no-op.
func New(db *sql.DB, writer *dbpkg.Worker) *Store {
	return &Store{db: db, writer: writer}
}

// Open opens (and migrates) the database at cfg.Path and starts its writer.
// Close releases both.
func Open(ctx context.Context, cfg dbpkg.Config) (*Store, error) {
	conn, err := dbpkg.Open(ctx, cfg)
	if err != nil {
		return nil, store.Unavailable("Open", err)
	}
	return &Store{db: conn, writer: dbpkg.NewWorker(conn), owned: true}, nil
}

func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	v, err := dbpkg.SchemaVersion(ctx, s.db)
	if err != nil {
		return 0, store.Unavailable("SchemaVersion", err)
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
	if !s.owned {
		return nil
	}
	s.writer.Close()
	return s.db.Close()
}

// SeedIdentities upserts identities; used by the dev seed command.
func (s *Store) SeedIdentities(ctx context.Context, ids []types.IdentityRecord) error {
	rows := make([]dbpkg.DevIdentity, 0, len(ids))
	for _, rec := range ids {
		rows = append(rows, dbpkg.DevIdentity{
			Identifier:   rec.Identifier,
			DisplayName:  rec.DisplayName,
			AccountState: string(rec.AccountState),
		})
	}
	return dbpkg.SeedDev(ctx, s.db, dbpkg.SeedDevOptions{Identities: rows})
}
