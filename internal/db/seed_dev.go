package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DevIdentity is a registry row inserted by SeedDev.
type DevIdentity struct {
	Identifier   string
	DisplayName  string
	AccountState string
}

// DefaultDevIdentities is the demo registry used when no list is given.
var DefaultDevIdentities = []DevIdentity{
	{Identifier: "A1B2C3", DisplayName: "Liyana", AccountState: "Active"},
	{Identifier: "B2C3D4", DisplayName: "Ahmad", AccountState: "Suspended"},
}

type SeedDevOptions struct {
	Identities []DevIdentity
}

// SeedDev upserts demo identities into a SQLite registry.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	ids := opt.Identities
	if len(ids) == 0 {
		ids = DefaultDevIdentities
	}

	for _, id := range ids {
		if _, err := db.ExecContext(ctx, `
INSERT INTO identities(identifier, display_name, account_state)
VALUES (?, ?, ?)
ON CONFLICT(identifier) DO UPDATE SET
  display_name  = excluded.display_name,
  account_state = excluded.account_state;
`, id.Identifier, id.DisplayName, id.AccountState); err != nil {
			return fmt.Errorf("seed identity %s: %w", id.Identifier, err)
		}
	}

	return nil
}
