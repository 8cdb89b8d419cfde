package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/clock"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/service"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store/memory"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSender captures every feedback message handed to it.
type recordingSender struct {
	mu   sync.Mutex
	sent []types.Feedback
	err  error
}

func (r *recordingSender) Publish(_ context.Context, fb types.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, fb)
	return r.err
}

func (r *recordingSender) Sent() []types.Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Feedback(nil), r.sent...)
}

var fixedNow = time.Date(2026, 2, 15, 1, 2, 3, 456, time.UTC) // 09:02:03 UTC+8

// newTestValidator builds a ScanValidator backed by an in-memory store,
// returning the store and sender so tests can inspect what happened.
func newTestValidator(policy service.StatePolicy, ids ...types.IdentityRecord) (*service.ScanValidator, *memory.Store, *recordingSender) {
	ms := memory.New(ids...)
	rs := &recordingSender{}
	v := service.NewScanValidator(service.ValidatorDeps{
		Identities: ms,
		Events:     ms,
		Feedback:   rs,
		Clock:      clock.NewFixed(fixedNow),
		Logger:     silentLogger(),
	}, service.ValidatorConfig{Policy: policy})
	return v, ms, rs
}

var (
	liyanaActive = types.IdentityRecord{
		Identifier:   "A1B2C3",
		DisplayName:  "Liyana",
		AccountState: types.AccountActive,
	}
	liyanaSuspended = types.IdentityRecord{
		Identifier:   "A1B2C3",
		DisplayName:  "Liyana",
		AccountState: types.AccountSuspended,
	}
)
