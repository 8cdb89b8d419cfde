package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/service"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store/memory"
)

func TestStoreProbe_StopWithoutStart(t *testing.T) {
	probe := service.NewStoreProbe(memory.New(), service.NewHealth(), nil, service.ProbeConfig{}, silentLogger())
	// Stop should return immediately.
	probe.Stop()
}

func TestStoreProbe_ReportsReachability(t *testing.T) {
	ms := memory.New()
	health := service.NewHealth()
	probe := service.NewStoreProbe(ms, health, nil, service.ProbeConfig{}, silentLogger())
	ctx := context.Background()

	if !probe.Probe(ctx) {
		t.Fatal("expected store to be reachable")
	}
	if _, up := health.Snapshot(); !up {
		t.Error("expected health to record store up")
	}

	ms.FailReads(errors.New("connection reset"))
	if probe.Probe(ctx) {
		t.Fatal("expected store to be unreachable")
	}
	if _, up := health.Snapshot(); up {
		t.Error("expected health to record store down")
	}
}

func TestStoreProbe_StartProbesImmediately(t *testing.T) {
	health := service.NewHealth()
	probe := service.NewStoreProbe(memory.New(), health, nil, service.ProbeConfig{Interval: time.Hour}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	probe.Start(ctx)
	if _, up := health.Snapshot(); !up {
		t.Error("expected an immediate probe on start")
	}
	probe.Stop()
}

func TestStoreProbe_StopsOnContextCancel(t *testing.T) {
	probe := service.NewStoreProbe(memory.New(), nil, nil, service.ProbeConfig{Interval: 10 * time.Millisecond}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	probe.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		probe.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("probe did not stop")
	}
}

func TestHealth_ReadyNeedsBoth(t *testing.T) {
	h := service.NewHealth()
	var changes []bool
	h.OnChange(func(ready bool) { changes = append(changes, ready) })

	h.SetStoreUp(true)
	if h.Ready() {
		t.Error("not ready without a subscription")
	}
	h.SetSubscribed(true)
	if !h.Ready() {
		t.Error("expected ready")
	}
	h.SetSubscribed(true)
	h.SetStoreUp(false)

	want := []bool{true, false}
	if len(changes) != len(want) {
		t.Fatalf("expected %v transitions, got %v", want, changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("transition %d: got %v, want %v", i, changes[i], want[i])
		}
	}
}
