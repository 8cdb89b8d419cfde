package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/clock"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

// civilColumn renders occurred_at back as the stored civil string so the
// driver never applies its own zone assumptions.
const civilColumn = `to_char(l.occurred_at, 'YYYY-MM-DD HH24:MI:SS')`

func (s *Store) Lookup(ctx context.Context, identifier string) (types.IdentityRecord, error) {
	var (
		name  string
		state sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT display_name, account_state FROM identities WHERE identifier = $1`,
		identifier,
	).Scan(&name, &state)
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

func (s *Store) Append(ctx context.Context, ev types.AttendanceEvent) (int64, error) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO attendance_log (identifier, resolved_status, occurred_at)
		 VALUES ($1, $2, $3::timestamp)
		 RETURNING id`,
		ev.Identifier, string(ev.ResolvedStatus), clock.FormatCivil(ev.OccurredAt),
	).Scan(&id)
	if err != nil {
		return 0, store.Unavailable("Append", err)
	}
	return id, nil
}

func (s *Store) RecentEvents(ctx context.Context, limit int) ([]types.EventView, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT l.id, l.identifier, l.resolved_status, `+civilColumn+`, COALESCE(i.display_name, '')
		 FROM attendance_log l
		 LEFT JOIN identities i ON l.identifier = i.identifier
		 ORDER BY l.occurred_at DESC, l.id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, store.Unavailable("RecentEvents", err)
	}
	defer rows.Close()

	var out []types.EventView
	for rows.Next() {
		var (
			v        types.EventView
			status   string
			occurred string
		)
		if err := rows.Scan(&v.RecordID, &v.Identifier, &status, &occurred, &v.DisplayName); err != nil {
			return nil, store.Unavailable("RecentEvents scan", err)
		}
		v.ResolvedStatus = types.ResolvedStatus(status)
		if v.OccurredAt, err = clock.ParseCivil(occurred); err != nil {
			return nil, fmt.Errorf("RecentEvents: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable("RecentEvents rows", err)
	}
	return out, nil
}

func (s *Store) Stats(ctx context.Context, day string) (types.Stats, error) {
	st := types.Stats{Day: day, StatusTotals: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT identifier) FROM attendance_log
		 WHERE resolved_status = 'Present' AND occurred_at::date = $1::date`,
		day,
	).Scan(&st.PresentToday); err != nil {
		return types.Stats{}, store.Unavailable("Stats present", err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT identifier) FROM attendance_log`,
	).Scan(&st.TotalUniqueScanned); err != nil {
		return types.Stats{}, store.Unavailable("Stats unique", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT resolved_status, COUNT(*) FROM attendance_log GROUP BY resolved_status`,
	)
	if err != nil {
		return types.Stats{}, store.Unavailable("Stats totals", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return types.Stats{}, store.Unavailable("Stats totals scan", err)
		}
		st.StatusTotals[status] = n
	}
	if err := rows.Err(); err != nil {
		return types.Stats{}, store.Unavailable("Stats totals rows", err)
	}
	return st, nil
}

// SeedIdentities upserts identities; used by the dev seed command.
func (s *Store) SeedIdentities(ctx context.Context, ids []types.IdentityRecord) error {
	for _, rec := range ids {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO identities (identifier, display_name, account_state)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (identifier) DO UPDATE SET
			   display_name = EXCLUDED.display_name,
			   account_state = EXCLUDED.account_state`,
			rec.Identifier, rec.DisplayName, string(rec.AccountState),
		); err != nil {
			return fmt.Errorf("seed identity %s: %w", rec.Identifier, err)
		}
	}
	return nil
}
