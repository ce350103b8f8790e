// Package scene implements the viewer's scene registry: the set of mesh
// entries addressed by stable ids, material and visibility mutation, camera
// interaction, and per-frame rendering.
//
// A Viewer is not safe for concurrent use. Mutations take effect on the
// next Render.
package scene

import (
	"cmp"
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/engine/renderer"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/math"
	"github.com/Faultbox/meshview/pkg/slotmap"
)

// MeshID identifies a mesh entry. Ids strictly increase in insertion order
// and are never reused.
type MeshID = slotmap.Key

// Options configures a Viewer.
type Options struct {
	// TrackballSpeed is the rotation in radians for a drag across the full
	// drawable width.
	TrackballSpeed float32
	// Light is the fixed point light position in view space.
	Light math.Vec3
	// Rand picks default face colors. Nil uses a randomly seeded source.
	Rand *rand.Rand
	// Camera overrides the default camera.
	Camera *camera.Camera
}

// DefaultOptions returns the stock interaction settings.
func DefaultOptions() Options {
	return Options{
		TrackballSpeed: 4,
		Light:          math.Vec3{X: 0, Y: 0.3, Z: 0},
	}
}

type entry struct {
	res       *mesh.Resource
	name      string
	points    []float64
	triangles []uint32
}

// Entry describes one mesh for listing.
type Entry struct {
	ID      MeshID
	Name    string
	Visible bool
}

// Viewer is the scene registry.
type Viewer struct {
	handle *gpu.Handle
	core   *renderer.Core
	cam    *camera.Camera
	meshes *slotmap.Map[*entry]
	rng    *rand.Rand
	speed  float32

	drag   dragState
	cursor math.Vec2

	refreshBox    bool
	refreshMatrix bool

	// ClearColor is the background of every frame.
	ClearColor gpu.Color
}

// New creates an empty viewer that renders through handle once it is ready.
func New(handle *gpu.Handle, opts Options) *Viewer {
	cam := opts.Camera
	if cam == nil {
		cam = camera.New()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Viewer{
		handle:     handle,
		core:       renderer.New(cam, opts.Light),
		cam:        cam,
		meshes:     slotmap.New[*entry](),
		rng:        rng,
		speed:      opts.TrackballSpeed,
		ClearColor: gpu.Color{A: 1},
	}
}

// Camera returns the viewer camera.
func (v *Viewer) Camera() *camera.Camera { return v.cam }

// Bounds returns the union box computed by the last render.
func (v *Viewer) Bounds() math.AABB { return v.core.Bounds() }

// Len returns the number of mesh entries.
func (v *Viewer) Len() int { return v.meshes.Len() }

// AppendMesh adds a flat-shaded mesh built from xyz point triples and
// triangle index triples. A nil color picks a random one. Input is not
// validated.
func (v *Viewer) AppendMesh(points []float64, triangles []uint32, color *[3]float32) MeshID {
	var c [3]float32
	if color != nil {
		c = *color
	} else {
		c = [3]float32{v.rng.Float32(), v.rng.Float32(), v.rng.Float32()}
	}

	e := &entry{points: points, triangles: triangles}
	id := v.meshes.Insert(e)
	e.name = fmt.Sprintf("mesh%d", id.Seq())
	e.res = mesh.NewResource(e.name, mesh.BuildFlatVertices(points, triangles), mesh.DefaultMaterial(c))

	logger.Debug("mesh appended",
		zap.Stringer("mesh", id),
		zap.Int("triangles", len(triangles)/3))
	return id
}

// SetMeshData replaces an entry's geometry.
func (v *Viewer) SetMeshData(id MeshID, points []float64, triangles []uint32) bool {
	e, ok := v.meshes.Get(id)
	if !ok {
		return false
	}
	e.points, e.triangles = points, triangles
	e.res.SetVertices(mesh.BuildFlatVertices(points, triangles))
	v.refreshBox = true
	v.refreshMatrix = true
	return true
}

// RemoveData deletes an entry and its GPU resources. Unknown ids are ignored.
func (v *Viewer) RemoveData(id MeshID) bool {
	e, ok := v.meshes.Remove(id)
	if !ok {
		return false
	}
	e.res.Release()
	v.refreshBox = true
	v.refreshMatrix = true
	return true
}

func (v *Viewer) resource(id MeshID) *mesh.Resource {
	if e, ok := v.meshes.Get(id); ok {
		return e.res
	}
	return nil
}

// SetVisible shows or hides an entry.
func (v *Viewer) SetVisible(id MeshID, visible bool) bool {
	r := v.resource(id)
	if r == nil {
		return false
	}
	r.SetVisible(visible)
	return true
}

// SetEdgeWidth sets the wireframe width in pixels; zero hides edges.
func (v *Viewer) SetEdgeWidth(id MeshID, width float32) bool {
	r := v.resource(id)
	if r == nil {
		return false
	}
	r.SetEdgeWidth(width)
	return true
}

// SetEdgeColor sets the wireframe color.
func (v *Viewer) SetEdgeColor(id MeshID, rgba [4]float32) bool {
	r := v.resource(id)
	if r == nil {
		return false
	}
	r.SetEdgeColor(rgba)
	return true
}

// SetFaceColor sets the face color.
func (v *Viewer) SetFaceColor(id MeshID, rgb [3]float32) bool {
	r := v.resource(id)
	if r == nil {
		return false
	}
	r.SetFaceColor(rgb)
	return true
}

// SetFaceAlpha sets the face transparency.
func (v *Viewer) SetFaceAlpha(id MeshID, alpha float32) bool {
	r := v.resource(id)
	if r == nil {
		return false
	}
	r.SetFaceAlpha(alpha)
	return true
}

// Visible reports whether the entry exists and is shown.
func (v *Viewer) Visible(id MeshID) bool {
	r := v.resource(id)
	return r != nil && r.Visible()
}

// Material returns the entry's material.
func (v *Viewer) Material(id MeshID) (mesh.Material, bool) {
	r := v.resource(id)
	if r == nil {
		return mesh.Material{}, false
	}
	return r.Material(), true
}

// SetName renames an entry.
func (v *Viewer) SetName(id MeshID, name string) bool {
	e, ok := v.meshes.Get(id)
	if !ok {
		return false
	}
	e.name = name
	return true
}

// Name returns the entry's display name.
func (v *Viewer) Name(id MeshID) (string, bool) {
	e, ok := v.meshes.Get(id)
	if !ok {
		return "", false
	}
	return e.name, true
}

// Source returns the points and triangles the entry was built from.
func (v *Viewer) Source(id MeshID) (points []float64, triangles []uint32, ok bool) {
	e, ok := v.meshes.Get(id)
	if !ok {
		return nil, nil, false
	}
	return e.points, e.triangles, true
}

// Entries lists every entry ordered by id.
func (v *Viewer) Entries() []Entry {
	out := make([]Entry, 0, v.meshes.Len())
	for id, e := range v.meshes.All() {
		out = append(out, Entry{ID: id, Name: e.name, Visible: e.res.Visible()})
	}
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.ID.Seq(), b.ID.Seq()) })
	return out
}

// Reframe recomputes the auto-framing on the next render.
func (v *Viewer) Reframe() {
	v.refreshBox = true
	v.refreshMatrix = true
}

// ResetView restores zoom and orientation and reframes.
func (v *Viewer) ResetView() {
	v.cam.Reset()
	v.drag = dragState{}
	v.Reframe()
}

// MouseScroll zooms in for positive delta and out for negative.
func (v *Viewer) MouseScroll(deltaY float64) {
	if v.cam.Scroll(deltaY) {
		v.refreshMatrix = true
	}
}

func (v *Viewer) resources() iter.Seq[*mesh.Resource] {
	return func(yield func(*mesh.Resource) bool) {
		for e := range v.meshes.Values() {
			if !yield(e.res) {
				return
			}
		}
	}
}

// Render draws one frame. It returns nil without drawing while the
// graphics context is not ready, and wraps frame acquisition failures.
func (v *Viewer) Render() error {
	dev, ok := v.handle.Device()
	if !ok {
		logger.Debug("graphics context not ready")
		return nil
	}

	frame, err := dev.AcquireFrame()
	if err != nil {
		return fmt.Errorf("acquire frame: %w", err)
	}

	pass := frame.BeginPass(gpu.PassDesc{ClearColor: v.ClearColor, ClearDepth: 1})
	err = v.core.Render(dev, pass, v.resources(), v.refreshBox, v.refreshMatrix)
	pass.End()
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	v.refreshBox = false
	v.refreshMatrix = false

	frame.Submit()
	frame.Present()
	return nil
}

// Close releases every GPU resource. The viewer must not be rendered afterwards.
func (v *Viewer) Close() {
	for e := range v.meshes.Values() {
		e.res.Release()
	}
	v.core.Close()
}
