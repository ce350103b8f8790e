package mesh

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/gpu/gputest"
)

// unit cube with corners at ±0.5, outward winding
var (
	cubePoints = []float64{
		-0.5, -0.5, -0.5,
		0.5, -0.5, -0.5,
		0.5, 0.5, -0.5,
		-0.5, 0.5, -0.5,
		-0.5, -0.5, 0.5,
		0.5, -0.5, 0.5,
		0.5, 0.5, 0.5,
		-0.5, 0.5, 0.5,
	}
	cubeTriangles = []uint32{
		0, 2, 1, 0, 3, 2,
		4, 5, 6, 4, 6, 7,
		0, 1, 5, 0, 5, 4,
		3, 7, 6, 3, 6, 2,
		0, 4, 7, 0, 7, 3,
		1, 2, 6, 1, 6, 5,
	}
)

func approx(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-5
}

func TestVertexStride(t *testing.T) {
	if VertexStride != 36 {
		t.Errorf("VertexStride = %d, want 36", VertexStride)
	}
	layout := VertexLayout()
	if layout.Stride != VertexStride || len(layout.Attributes) != 3 {
		t.Errorf("unexpected layout %+v", layout)
	}
}

func TestBuildFlatVertices(t *testing.T) {
	points := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}
	vertices := BuildFlatVertices(points, []uint32{0, 1, 2})

	if len(vertices) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(vertices))
	}
	for i, v := range vertices {
		if v.Normal != [3]float32{0, 0, 1} {
			t.Errorf("vertex %d normal = %v, want +Z", i, v.Normal)
		}
		if v.Bary != corners[i] {
			t.Errorf("vertex %d bary = %v", i, v.Bary)
		}
	}
	if vertices[1].Position != [3]float32{1, 0, 0} {
		t.Errorf("vertex 1 position = %v", vertices[1].Position)
	}
}

func TestBuildFlatVerticesUnshared(t *testing.T) {
	vertices := BuildFlatVertices(cubePoints, cubeTriangles)
	if len(vertices) != 36 {
		t.Fatalf("expected 36 vertices for 12 triangles, got %d", len(vertices))
	}
	// every face normal is a unit axis
	for i, v := range vertices {
		n := v.Normal
		l := n[0]*n[0] + n[1]*n[1] + n[2]*n[2]
		if !approx(l, 1) {
			t.Errorf("vertex %d normal %v not unit length", i, n)
		}
	}
	// first triangle lies on z=-0.5 facing -Z
	if !approx(vertices[0].Normal[2], -1) {
		t.Errorf("first face normal = %v, want -Z", vertices[0].Normal)
	}
}

func TestBounds(t *testing.T) {
	box := Bounds(BuildFlatVertices(cubePoints, cubeTriangles))
	for i, v := range box.Min.Array() {
		if !approx(v, -0.5) {
			t.Errorf("min[%d] = %f", i, v)
		}
	}
	for i, v := range box.Max.Array() {
		if !approx(v, 0.5) {
			t.Errorf("max[%d] = %f", i, v)
		}
	}
	if !Bounds(nil).IsEmpty() {
		t.Error("bounds of no vertices should be empty")
	}
}

func TestMaterialBytes(t *testing.T) {
	m := DefaultMaterial([3]float32{1, 0.5, 0})
	m.EdgeWidth = 2
	b := m.Bytes()
	if len(b) != MaterialSize {
		t.Fatalf("len = %d, want %d", len(b), MaterialSize)
	}
	read := func(i int) float32 {
		bits := uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
		return gomath.Float32frombits(bits)
	}
	if read(0) != 0.2 || read(4) != 1 || read(5) != 0.5 || read(7) != 1 || read(16) != 2 {
		t.Errorf("unexpected layout: ambient.r=%f diffuse=%f,%f alpha=%f width=%f",
			read(0), read(4), read(5), read(7), read(16))
	}
}

func TestSettersMarkDirty(t *testing.T) {
	tests := []struct {
		name string
		set  func(r *Resource)
		want DirtyFlags
	}{
		{"face color", func(r *Resource) { r.SetFaceColor([3]float32{1, 0, 0}) }, DirtyFace | DirtyMaterial},
		{"face alpha", func(r *Resource) { r.SetFaceAlpha(0.5) }, DirtyFace | DirtyMaterial},
		{"edge color", func(r *Resource) { r.SetEdgeColor([4]float32{1, 1, 1, 1}) }, DirtyEdge | DirtyMaterial},
		{"edge width", func(r *Resource) { r.SetEdgeWidth(1) }, DirtyEdge | DirtyMaterial},
		{"vertices", func(r *Resource) { r.SetVertices(nil) }, DirtyVertex},
		{"visibility", func(r *Resource) { r.SetVisible(false) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResource("m", BuildFlatVertices(cubePoints, cubeTriangles), DefaultMaterial([3]float32{1, 1, 1}))
			r.dirty = 0
			tt.set(r)
			if r.Dirty() != tt.want {
				t.Errorf("dirty = %04b, want %04b", r.Dirty(), tt.want)
			}
		})
	}
}

func newInitialized(t *testing.T, dev *gputest.Device) *Resource {
	t.Helper()
	layout, _ := dev.CreateBindGroupLayout(gpu.BindGroupLayoutDesc{Label: "material"})
	r := NewResource("cube", BuildFlatVertices(cubePoints, cubeTriangles), DefaultMaterial([3]float32{1, 1, 1}))
	if err := r.Init(dev, layout); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func TestInitOnce(t *testing.T) {
	dev := gputest.NewDevice(100, 100)
	r := newInitialized(t, dev)
	if !r.Initialized() {
		t.Fatal("expected initialized resource")
	}
	if err := r.Init(dev, nil); err != nil {
		t.Fatal(err)
	}
	if n := len(dev.Buffers); n != 2 {
		t.Errorf("expected 2 buffers after repeated Init, got %d", n)
	}
	if n := len(dev.BindGroups); n != 1 {
		t.Errorf("expected 1 bind group, got %d", n)
	}
	vbo := dev.BuffersWithUsage(gpu.BufferVertex)[0]
	if vbo.Size() != 36*VertexStride {
		t.Errorf("vertex buffer size = %d", vbo.Size())
	}
}

func TestUpdateVertexBuffer(t *testing.T) {
	dev := gputest.NewDevice(100, 100)
	r := newInitialized(t, dev)

	if err := r.UpdateVertexBuffer(dev); err != nil {
		t.Fatal(err)
	}
	if r.Dirty().Has(DirtyVertex) {
		t.Error("DirtyVertex should be cleared")
	}
	if got := dev.Writes(gpu.BufferVertex); got != 1 {
		t.Errorf("vertex writes = %d, want 1", got)
	}

	// shrink to a single triangle: buffer is reallocated
	r.SetVertices(BuildFlatVertices(cubePoints, cubeTriangles[:3]))
	if err := r.UpdateVertexBuffer(dev); err != nil {
		t.Fatal(err)
	}
	vbos := dev.BuffersWithUsage(gpu.BufferVertex)
	if len(vbos) != 2 || !vbos[0].Released || vbos[1].Size() != 3*VertexStride {
		t.Errorf("expected reallocated vertex buffer, got %d buffers", len(vbos))
	}
	if !approx(r.Bounds().Max.Z, -0.5) {
		t.Errorf("bounds not recomputed: %+v", r.Bounds())
	}
}

func TestUpdateMaterialClearsFlags(t *testing.T) {
	dev := gputest.NewDevice(100, 100)
	r := newInitialized(t, dev)
	r.SetEdgeWidth(3)
	r.UpdateMaterial(dev)
	if r.Dirty()&(DirtyMaterial|DirtyFace|DirtyEdge) != 0 {
		t.Errorf("material flags still set: %04b", r.Dirty())
	}
	buf := dev.BuffersWithUsage(gpu.BufferUniform)[0]
	if buf.Writes != 1 {
		t.Errorf("material writes = %d, want 1", buf.Writes)
	}
}

func TestRenderDrawOrder(t *testing.T) {
	tests := []struct {
		name  string
		alpha float32
		want  []gpu.CullMode
	}{
		{"opaque", 1, []gpu.CullMode{gpu.CullBack}},
		{"threshold", 0.999, []gpu.CullMode{gpu.CullBack}},
		{"transparent", 0.5, []gpu.CullMode{gpu.CullFront, gpu.CullBack}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.NewDevice(100, 100)
			back, _ := dev.CreatePipeline(gpu.PipelineDesc{Label: "back", Cull: gpu.CullBack})
			front, _ := dev.CreatePipeline(gpu.PipelineDesc{Label: "front", Cull: gpu.CullFront})
			r := newInitialized(t, dev)
			r.SetFaceAlpha(tt.alpha)

			frame, _ := dev.AcquireFrame()
			pass := frame.BeginPass(gpu.PassDesc{})
			r.Render(pass, back, front)
			pass.End()

			if len(dev.Draws) != len(tt.want) {
				t.Fatalf("draws = %d, want %d", len(dev.Draws), len(tt.want))
			}
			for i, d := range dev.Draws {
				if d.Pipeline.Desc.Cull != tt.want[i] {
					t.Errorf("draw %d cull = %s, want %s", i, d.Pipeline.Desc.Cull, tt.want[i])
				}
				if d.VertexCount != 36 {
					t.Errorf("draw %d count = %d", i, d.VertexCount)
				}
				if d.BindGroups[MaterialSlot] == nil {
					t.Errorf("draw %d has no material group", i)
				}
			}
		})
	}
}

func TestRelease(t *testing.T) {
	dev := gputest.NewDevice(100, 100)
	r := newInitialized(t, dev)
	r.Release()
	for _, b := range dev.Buffers {
		if !b.Released {
			t.Errorf("buffer %q not released", b.Label)
		}
	}
	if !dev.BindGroups[0].Released {
		t.Error("bind group not released")
	}
	r.Release()
}
