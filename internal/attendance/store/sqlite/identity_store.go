package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

// Lookup reads one identity. A NULL account_state reads as Active.
func (s *Store) Lookup(ctx context.Context, identifier string) (types.IdentityRecord, error) {
	var (
		name  string
		state sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT display_name, account_state
FROM identities
WHERE identifier = ?;
`, identifier).Scan(&name, &state)

	if errors.Is(err, sql.ErrNoRows) {
		return types.IdentityRecord{}, store.ErrNotFound
	}
	if err != nil {
		return types.IdentityRecord{}, store.Unavailable("Lookup", err)
	}

	return types.IdentityRecord{
		Identifier:   identifier,
		DisplayName:  name,
		AccountState: types.AccountState(state.String).Normalize(),
	}, nil
}
