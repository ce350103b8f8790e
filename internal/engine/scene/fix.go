package scene

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/internal/meshio"
)

// ErrFixBusy is returned by Fixer.Start while a fix is in flight.
var ErrFixBusy = errors.New("scene: fix already running")

// Fixer merges the visible meshes into one cleaned mesh off the UI thread.
// At most one fix runs at a time; further starts are rejected, not queued.
type Fixer struct {
	delay  time.Duration
	busy   atomic.Bool
	ready  <-chan time.Time
	result chan meshio.Mesh
}

// NewFixer creates a fixer that waits delay before merging so the caller
// can present its busy state first.
func NewFixer(delay time.Duration) *Fixer {
	return &Fixer{delay: delay}
}

// Busy reports whether a fix is in flight.
func (f *Fixer) Busy() bool {
	return f.busy.Load()
}

// Start begins a fix. The visible meshes are read once the delay has
// elapsed, by the Poll or Wait call that observes it, so changes made in
// the meantime are included. It must be called on the thread that owns v.
func (f *Fixer) Start(v *Viewer) error {
	if !f.busy.CompareAndSwap(false, true) {
		return ErrFixBusy
	}
	logger.Info("fix started", zap.Int("meshes", v.Len()))
	f.ready = time.After(f.delay)
	f.result = nil
	return nil
}

// merge snapshots the visible meshes of v and merges them in the background.
func (f *Fixer) merge(v *Viewer) {
	var parts []meshio.Mesh
	for _, e := range v.Entries() {
		if !e.Visible {
			continue
		}
		points, triangles, _ := v.Source(e.ID)
		parts = append(parts, meshio.Mesh{Points: points, Triangles: triangles})
	}
	logger.Debug("fix merging", zap.Int("parts", len(parts)))

	f.ready = nil
	f.result = make(chan meshio.Mesh, 1)
	go func(out chan<- meshio.Mesh) {
		out <- meshio.Merge(parts...)
	}(f.result)
}

// Poll advances a running fix without blocking and applies its result to v
// once the merge is done. It reports whether a result was applied.
func (f *Fixer) Poll(v *Viewer) (MeshID, bool) {
	if !f.Busy() {
		return MeshID{}, false
	}
	select {
	case <-f.ready:
		f.merge(v)
	default:
	}
	select {
	case m := <-f.result:
		return f.apply(v, m), true
	default:
		return MeshID{}, false
	}
}

// Wait blocks until the running fix finishes and applies it to v. The fix
// itself keeps running if ctx ends first.
func (f *Fixer) Wait(ctx context.Context, v *Viewer) (MeshID, error) {
	if !f.Busy() {
		return MeshID{}, errors.New("scene: no fix running")
	}
	if f.ready != nil {
		select {
		case <-f.ready:
			f.merge(v)
		case <-ctx.Done():
			return MeshID{}, fmt.Errorf("wait for fix: %w", ctx.Err())
		}
	}
	select {
	case m := <-f.result:
		return f.apply(v, m), nil
	case <-ctx.Done():
		return MeshID{}, fmt.Errorf("wait for fix: %w", ctx.Err())
	}
}

// apply hides every entry and appends the merged mesh as model<N>, where N
// is the entry count before the append.
func (f *Fixer) apply(v *Viewer, m meshio.Mesh) MeshID {
	for _, e := range v.Entries() {
		v.SetVisible(e.ID, false)
	}
	n := v.Len()
	id := v.AppendMesh(m.Points, m.Triangles, nil)
	v.SetName(id, fmt.Sprintf("model%d", n))
	f.result = nil
	f.busy.Store(false)

	logger.Info("fix finished",
		zap.Stringer("mesh", id),
		zap.Int("triangles", m.TriangleCount()))
	return id
}
