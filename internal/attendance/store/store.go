package store

import (
	"context"
	"errors"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

var (
	// ErrNotFound means the identifier has no identity record. Expected, not a failure.
	ErrNotFound = errors.New("identity not found")

	// ErrUnavailable wraps any connection or query failure from a backing store.
	ErrUnavailable = errors.New("store unavailable")
)

// IdentityStore is a read-only view of the identity registry.
type IdentityStore interface {
	Lookup(ctx context.Context, identifier string) (types.IdentityRecord, error)
}

// EventLog persists attendance events as an append-only log. Append is not
// idempotent: the same event appended twice yields two rows.
type EventLog interface {
	Append(ctx context.Context, ev types.AttendanceEvent) (int64, error)
}

// EventReader backs the read-only dashboard.
type EventReader interface {
	RecentEvents(ctx context.Context, limit int) ([]types.EventView, error)
	// Stats aggregates the log. day is a civil date (YYYY-MM-DD, UTC+8).
	Stats(ctx context.Context, day string) (types.Stats, error)
}

// Pinger reports store reachability for health probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the full backend used by the server.
type Store interface {
	IdentityStore
	EventLog
	EventReader
	Pinger
	Close() error
}

// SchemaReporter reports the newest applied schema migration.
type SchemaReporter interface {
	SchemaVersion(ctx context.Context) (int, error)
}

// Seeder loads demo identities in the dev environment.
type Seeder interface {
	SeedIdentities(ctx context.Context, ids []types.IdentityRecord) error
}
