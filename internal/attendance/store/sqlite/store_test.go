package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/clock"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
	sqlitestore "github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store/sqlite"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

// ── Lookup ───────────────────────────────────────────────────────────────────

func TestLookup_ActiveIdentity(t *testing.T) {
	conn := openTestDB(t)
	seedIdentity(t, conn, "A1B2C3", "Liyana", strPtr("Active"))
	s := sqlitestore.New(conn, newTestWriter(t, conn))

	rec, err := s.Lookup(context.Background(), "A1B2C3")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.DisplayName != "Liyana" {
		t.Errorf("expected display_name=Liyana, got %q", rec.DisplayName)
	}
	if rec.AccountState != types.AccountActive {
		t.Errorf("expected Active, got %q", rec.AccountState)
	}
}

func TestLookup_NullStateReadsActive(t *testing.T) {
	conn := openTestDB(t)
	seedIdentity(t, conn, "A1B2C3", "Liyana", nil)
	s := sqlitestore.New(conn, newTestWriter(t, conn))

	rec, err := s.Lookup(context.Background(), "A1B2C3")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.AccountState != types.AccountActive {
		t.Errorf("expected NULL state to read Active, got %q", rec.AccountState)
	}
}

func TestLookup_Suspended(t *testing.T) {
	conn := openTestDB(t)
	seedIdentity(t, conn, "A1B2C3", "Liyana", strPtr("Suspended"))
	s := sqlitestore.New(conn, newTestWriter(t, conn))

	rec, err := s.Lookup(context.Background(), "A1B2C3")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.AccountState != types.AccountSuspended {
		t.Errorf("expected Suspended, got %q", rec.AccountState)
	}
}

func TestLookup_Unknown_NotFound(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.New(conn, newTestWriter(t, conn))

	_, err := s.Lookup(context.Background(), "ZZZZ")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookup_ClosedDB_Unavailable(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.New(conn, newTestWriter(t, conn))
	conn.Close()

	_, err := s.Lookup(context.Background(), "A1B2C3")
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// ── Append ───────────────────────────────────────────────────────────────────

func TestAppend_WritesCivilTimestamp(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.New(conn, newTestWriter(t, conn))

	// 01:02:03 UTC is 09:02:03 in UTC+8.
	at := time.Date(2026, 2, 15, 1, 2, 3, 500, time.UTC)
	id, err := s.Append(context.Background(), types.AttendanceEvent{
		Identifier:     "A1B2C3",
		ResolvedStatus: types.StatusPresent,
		OccurredAt:     at,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive record id, got %d", id)
	}

	var uid, status, occurred string
	if err := conn.QueryRow(
		`SELECT identifier, resolved_status, occurred_at FROM attendance_log WHERE id = ?`, id,
	).Scan(&uid, &status, &occurred); err != nil {
		t.Fatalf("query: %v", err)
	}
	if uid != "A1B2C3" || status != "Present" {
		t.Errorf("unexpected row: %s/%s", uid, status)
	}
	if occurred != "2026-02-15 09:02:03" {
		t.Errorf("expected civil UTC+8 timestamp, got %q", occurred)
	}
}

func TestAppend_UnknownIdentifierStillLogged(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.New(conn, newTestWriter(t, conn))

	if _, err := s.Append(context.Background(), types.AttendanceEvent{
		Identifier:     "ZZZZ",
		ResolvedStatus: types.StatusDenied,
		OccurredAt:     time.Now(),
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM attendance_log WHERE identifier = 'ZZZZ'`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}

func TestAppend_DuplicatesAreNotSuppressed(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.New(conn, newTestWriter(t, conn))
	ctx := context.Background()
	ev := types.AttendanceEvent{Identifier: "A1B2C3", ResolvedStatus: types.StatusPresent, OccurredAt: time.Now()}

	var last int64
	for i := 0; i < 3; i++ {
		id, err := s.Append(ctx, ev)
		if err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
		if id <= last {
			t.Errorf("expected increasing ids, got %d after %d", id, last)
		}
		last = id
	}

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM attendance_log`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}
}

func TestAppend_ClosedWriter_Unavailable(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	s := sqlitestore.New(conn, w)
	w.Close()

	_, err := s.Append(context.Background(), types.AttendanceEvent{Identifier: "A", ResolvedStatus: types.StatusDenied})
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// ── Dashboard reads ──────────────────────────────────────────────────────────

func TestRecentEvents_JoinsNamesNewestFirst(t *testing.T) {
	conn := openTestDB(t)
	seedIdentity(t, conn, "A1B2C3", "Liyana", strPtr("Active"))
	s := sqlitestore.New(conn, newTestWriter(t, conn))
	ctx := context.Background()
	base := time.Date(2026, 2, 15, 9, 0, 0, 0, clock.Zone)

	for i, ev := range []types.AttendanceEvent{
		{Identifier: "A1B2C3", ResolvedStatus: types.StatusPresent, OccurredAt: base},
		{Identifier: "ZZZZ", ResolvedStatus: types.StatusDenied, OccurredAt: base.Add(time.Minute)},
	} {
		if _, err := s.Append(ctx, ev); err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}

	got, err := s.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Identifier != "ZZZZ" || got[0].DisplayName != "" {
		t.Errorf("expected unknown card first with no name, got %+v", got[0])
	}
	if got[1].DisplayName != "Liyana" {
		t.Errorf("expected joined name Liyana, got %q", got[1].DisplayName)
	}
	if !got[1].OccurredAt.Equal(base) {
		t.Errorf("expected occurred_at %v, got %v", base, got[1].OccurredAt)
	}
}

func TestStats_Aggregates(t *testing.T) {
	conn := openTestDB(t)
	s := sqlitestore.New(conn, newTestWriter(t, conn))
	ctx := context.Background()
	today := time.Date(2026, 2, 15, 8, 0, 0, 0, clock.Zone)

	for i, ev := range []types.AttendanceEvent{
		{Identifier: "A", ResolvedStatus: types.StatusPresent, OccurredAt: today},
		{Identifier: "A", ResolvedStatus: types.StatusPresent, OccurredAt: today.Add(time.Hour)},
		{Identifier: "B", ResolvedStatus: types.StatusPresent, OccurredAt: today.AddDate(0, 0, -1)},
		{Identifier: "C", ResolvedStatus: types.StatusSuspended, OccurredAt: today},
		{Identifier: "Z", ResolvedStatus: types.StatusDenied, OccurredAt: today},
	} {
		if _, err := s.Append(ctx, ev); err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}

	st, err := s.Stats(ctx, "2026-02-15")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.PresentToday != 1 {
		t.Errorf("expected present_today=1, got %d", st.PresentToday)
	}
	if st.TotalUniqueScanned != 4 {
		t.Errorf("expected total_unique_scanned=4, got %d", st.TotalUniqueScanned)
	}
	if st.StatusTotals["Present"] != 3 || st.StatusTotals["Denied"] != 1 || st.StatusTotals["Suspended"] != 1 {
		t.Errorf("unexpected totals: %v", st.StatusTotals)
	}
}

func TestOpen_OwnsAndCloses(t *testing.T) {
	s, err := sqlitestore.Open(context.Background(), dbConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Ping(context.Background()); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable after close, got %v", err)
	}
}

func TestSchemaVersion_AfterOpen(t *testing.T) {
	s, err := sqlitestore.Open(context.Background(), dbConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	v, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 1 {
		t.Errorf("expected schema version 1, got %d", v)
	}
}
