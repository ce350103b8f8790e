package gpu

import (
	"sync"
	"sync/atomic"
)

// Handle is the shared, optionally-ready graphics context. The windowing
// layer creates the device and calls Set once; every consumer observes the
// same readiness through Device.
type Handle struct {
	dev   atomic.Pointer[deviceRef]
	once  sync.Once
	ready chan struct{}
}

type deviceRef struct {
	Device
}

// NewHandle returns a handle in the not-yet-ready state.
func NewHandle() *Handle {
	return &Handle{ready: make(chan struct{})}
}

// Set publishes the device. Calls after the first are ignored and report false.
func (h *Handle) Set(d Device) bool {
	set := false
	h.once.Do(func() {
		h.dev.Store(&deviceRef{d})
		close(h.ready)
		set = true
	})
	return set
}

// Device returns the device once it is ready.
func (h *Handle) Device() (Device, bool) {
	ref := h.dev.Load()
	if ref == nil {
		return nil, false
	}
	return ref.Device, true
}

// Ready is closed when the device becomes available.
func (h *Handle) Ready() <-chan struct{} {
	return h.ready
}
