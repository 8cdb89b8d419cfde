package service

import (
	"sync"
)

// Health tracks readiness of the two things a scan depends on: the broker
// subscription and the store. Listeners are called when readiness flips.
type Health struct {
	mu         sync.Mutex
	subscribed bool
	storeUp    bool
	listeners  []func(ready bool)
}

func NewHealth() *Health { return &Health{} }

// OnChange registers fn to run whenever Ready changes. fn runs with no lock held.
func (h *Health) OnChange(fn func(ready bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

func (h *Health) SetSubscribed(v bool) {
	h.update(func() { h.subscribed = v })
}

func (h *Health) SetStoreUp(v bool) {
	h.update(func() { h.storeUp = v })
}

func (h *Health) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.subscribed && h.storeUp
}

// Snapshot returns the individual checks for health endpoints.
func (h *Health) Snapshot() (subscribed, storeUp bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.subscribed, h.storeUp
}

func (h *Health) update(set func()) {
	h.mu.Lock()
	before := h.subscribed && h.storeUp
	set()
	after := h.subscribed && h.storeUp
	listeners := append([]func(bool){}, h.listeners...)
	h.mu.Unlock()

	if before == after {
		return
	}
	for _, fn := range listeners {
		fn(after)
	}
}
