package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/clock"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

// Append inserts one attendance row and returns its id. The timestamp is
// written as a zone-less UTC+8 civil string.
func (s *Store) Append(ctx context.Context, ev types.AttendanceEvent) (int64, error) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	occurred := clock.FormatCivil(ev.OccurredAt)

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO attendance_log(identifier, resolved_status, occurred_at)
VALUES (?, ?, ?);
`, ev.Identifier, string(ev.ResolvedStatus), occurred)
		if err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Append last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, store.Unavailable("Append", err)
	}
	return id, nil
}

func (s *Store) RecentEvents(ctx context.Context, limit int) ([]types.EventView, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT l.id, l.identifier, l.resolved_status, l.occurred_at, COALESCE(i.display_name, '')
FROM attendance_log l
LEFT JOIN identities i ON l.identifier = i.identifier
ORDER BY l.occurred_at DESC, l.id DESC
LIMIT ?;
`, limit)
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

	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(DISTINCT identifier)
FROM attendance_log
WHERE resolved_status = 'Present' AND date(occurred_at) = ?;
`, day).Scan(&st.PresentToday); err != nil {
		return types.Stats{}, store.Unavailable("Stats present", err)
	}

	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(DISTINCT identifier) FROM attendance_log;
`).Scan(&st.TotalUniqueScanned); err != nil {
		return types.Stats{}, store.Unavailable("Stats unique", err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT resolved_status, COUNT(*)
FROM attendance_log
GROUP BY resolved_status;
`)
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
