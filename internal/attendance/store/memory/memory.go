// Package memory provides in-process stores for tests and the dev
// environment. Failure hooks let tests simulate an unreachable backend.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/clock"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

type Store struct {
	mu         sync.RWMutex
	identities map[string]types.IdentityRecord
	events     []types.AttendanceEvent
	nextID     int64

	lookupErr error
	appendErr error
	readErr   error
}

var _ store.Store = (*Store)(nil)

func New(identities ...types.IdentityRecord) *Store {
	s := &Store{identities: make(map[string]types.IdentityRecord, len(identities))}
	for _, rec := range identities {
		s.identities[rec.Identifier] = rec
	}
	return s
}

// FailLookups makes every Lookup fail with err wrapped as unavailable. nil clears it.
func (s *Store) FailLookups(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupErr = err
}

// FailAppends makes every Append fail with err wrapped as unavailable. nil clears it.
func (s *Store) FailAppends(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
}

// FailReads makes dashboard queries and Ping fail. nil clears it.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

func (s *Store) Lookup(_ context.Context, identifier string) (types.IdentityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lookupErr != nil {
		return types.IdentityRecord{}, store.Unavailable("Lookup", s.lookupErr)
	}
	rec, ok := s.identities[identifier]
	if !ok {
		return types.IdentityRecord{}, store.ErrNotFound
	}
	rec.AccountState = rec.AccountState.Normalize()
	return rec, nil
}

func (s *Store) Append(_ context.Context, ev types.AttendanceEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return 0, store.Unavailable("Append", s.appendErr)
	}
	s.nextID++
	ev.RecordID = s.nextID
	ev.OccurredAt = clock.Normalize(ev.OccurredAt)
	s.events = append(s.events, ev)
	return ev.RecordID, nil
}

// Events returns a copy of all appended events in insertion order. Test-only helper.
func (s *Store) Events() []types.AttendanceEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.AttendanceEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) RecentEvents(_ context.Context, limit int) ([]types.EventView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.readErr != nil {
		return nil, store.Unavailable("RecentEvents", s.readErr)
	}

	evs := make([]types.AttendanceEvent, len(s.events))
	copy(evs, s.events)
	sort.SliceStable(evs, func(i, j int) bool {
		if !evs[i].OccurredAt.Equal(evs[j].OccurredAt) {
			return evs[i].OccurredAt.After(evs[j].OccurredAt)
		}
		return evs[i].RecordID > evs[j].RecordID
	})
	if limit > 0 && len(evs) > limit {
		evs = evs[:limit]
	}

	out := make([]types.EventView, 0, len(evs))
	for _, ev := range evs {
		out = append(out, types.EventView{
			AttendanceEvent: ev,
			DisplayName:     s.identities[ev.Identifier].DisplayName,
		})
	}
	return out, nil
}

func (s *Store) Stats(_ context.Context, day string) (types.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.readErr != nil {
		return types.Stats{}, store.Unavailable("Stats", s.readErr)
	}

	present := make(map[string]struct{})
	unique := make(map[string]struct{})
	totals := make(map[string]int)
	for _, ev := range s.events {
		unique[ev.Identifier] = struct{}{}
		totals[string(ev.ResolvedStatus)]++
		if ev.ResolvedStatus == types.StatusPresent &&
			strings.HasPrefix(clock.FormatCivil(ev.OccurredAt), day) {
			present[ev.Identifier] = struct{}{}
		}
	}
	return types.Stats{
		Day:                day,
		PresentToday:       len(present),
		TotalUniqueScanned: len(unique),
		StatusTotals:       totals,
	}, nil
}

func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.readErr != nil {
		return store.Unavailable("Ping", s.readErr)
	}
	return nil
}

func (s *Store) Close() error { return nil }
