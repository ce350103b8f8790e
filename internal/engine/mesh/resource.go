package mesh

import (
	"fmt"

	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/pkg/math"
)

// MaterialSlot is the bind group slot of the per-mesh material group.
const MaterialSlot = 1

// Resource is one mesh entry's CPU state and, once initialized, its GPU
// buffers. GPU resources are created at most once and live until Release.
type Resource struct {
	label    string
	vertices []Vertex
	material Material
	dirty    DirtyFlags
	bounds   math.AABB
	visible  bool

	gpu *resources
}

type resources struct {
	material gpu.Buffer
	vertex   gpu.Buffer
	group    gpu.BindGroup
}

// NewResource creates a visible entry with every dirty flag set.
func NewResource(label string, vertices []Vertex, material Material) *Resource {
	return &Resource{
		label:    label,
		vertices: vertices,
		material: material,
		dirty:    DirtyAll,
		bounds:   Bounds(vertices),
		visible:  true,
	}
}

// Label names the entry in GPU resource labels and logs.
func (r *Resource) Label() string { return r.label }

// Vertices returns the flat-shaded vertex array.
func (r *Resource) Vertices() []Vertex { return r.vertices }

// VertexCount returns the number of vertices drawn.
func (r *Resource) VertexCount() int { return len(r.vertices) }

// Bounds returns the box around the current vertices.
func (r *Resource) Bounds() math.AABB { return r.bounds }

// Material returns a copy of the material.
func (r *Resource) Material() Material { return r.material }

// Dirty returns the pending dirty flags.
func (r *Resource) Dirty() DirtyFlags { return r.dirty }

// Visible reports whether the entry is drawn.
func (r *Resource) Visible() bool { return r.visible }

// Initialized reports whether GPU resources exist.
func (r *Resource) Initialized() bool { return r.gpu != nil }

// SetVisible toggles drawing. No upload is needed.
func (r *Resource) SetVisible(v bool) { r.visible = v }

// SetVertices replaces the vertex data.
func (r *Resource) SetVertices(vertices []Vertex) {
	r.vertices = vertices
	r.bounds = Bounds(vertices)
	r.dirty |= DirtyVertex
}

// SetFaceColor sets the diffuse and ambient colors, keeping alpha.
func (r *Resource) SetFaceColor(rgb [3]float32) {
	for i, c := range rgb {
		r.material.Diffuse[i] = c
		r.material.Ambient[i] = 0.2 * c
	}
	r.dirty |= DirtyFace | DirtyMaterial
}

// SetFaceAlpha sets the face transparency.
func (r *Resource) SetFaceAlpha(alpha float32) {
	r.material.Diffuse[3] = alpha
	r.dirty |= DirtyFace | DirtyMaterial
}

// SetEdgeColor sets the wireframe color.
func (r *Resource) SetEdgeColor(rgba [4]float32) {
	r.material.EdgeColor = rgba
	r.dirty |= DirtyEdge | DirtyMaterial
}

// SetEdgeWidth sets the wireframe width in pixels. Zero disables edges.
func (r *Resource) SetEdgeWidth(width float32) {
	r.material.EdgeWidth = width
	r.dirty |= DirtyEdge | DirtyMaterial
}

// Init allocates the material uniform, the vertex buffer and the material
// bind group. Calling it again is a no-op.
func (r *Resource) Init(dev gpu.Device, layout gpu.BindGroupLayout) error {
	if r.gpu != nil {
		return nil
	}

	matBuf, err := dev.CreateBuffer(gpu.BufferDesc{
		Label:    r.label + " material",
		Usage:    gpu.BufferUniform,
		Contents: r.material.Bytes(),
	})
	if err != nil {
		return fmt.Errorf("material buffer: %w", err)
	}

	vbo, err := dev.CreateBuffer(gpu.BufferDesc{
		Label: r.label + " vertices",
		Usage: gpu.BufferVertex,
		Size:  len(r.vertices) * VertexStride,
	})
	if err != nil {
		matBuf.Release()
		return fmt.Errorf("vertex buffer: %w", err)
	}

	group, err := dev.CreateBindGroup(gpu.BindGroupDesc{
		Label:   r.label + " material group",
		Layout:  layout,
		Entries: []gpu.BindGroupEntry{{Binding: 0, Buffer: matBuf}},
	})
	if err != nil {
		vbo.Release()
		matBuf.Release()
		return fmt.Errorf("material bind group: %w", err)
	}

	r.gpu = &resources{material: matBuf, vertex: vbo, group: group}
	return nil
}

// UpdateVertexBuffer uploads the vertex data, reallocating the buffer when
// its size changed, and clears DirtyVertex.
func (r *Resource) UpdateVertexBuffer(dev gpu.Device) error {
	data := vertexBytes(r.vertices)
	if r.gpu.vertex.Size() != len(data) {
		vbo, err := dev.CreateBuffer(gpu.BufferDesc{
			Label: r.label + " vertices",
			Usage: gpu.BufferVertex,
			Size:  len(data),
		})
		if err != nil {
			return fmt.Errorf("vertex buffer: %w", err)
		}
		r.gpu.vertex.Release()
		r.gpu.vertex = vbo
	}
	if len(data) > 0 {
		dev.WriteBuffer(r.gpu.vertex, 0, data)
	}
	r.bounds = Bounds(r.vertices)
	r.dirty &^= DirtyVertex
	return nil
}

// UpdateMaterial uploads the material block and clears the material flags.
func (r *Resource) UpdateMaterial(dev gpu.Device) {
	dev.WriteBuffer(r.gpu.material, 0, r.material.Bytes())
	r.dirty &^= DirtyMaterial | DirtyFace | DirtyEdge
}

// Render binds the material group and vertex buffer and draws. Transparent
// meshes draw back faces (front-culled) first, then front faces.
func (r *Resource) Render(pass gpu.Pass, cullBack, cullFront gpu.Pipeline) {
	if r.gpu == nil || len(r.vertices) == 0 {
		return
	}
	pass.SetBindGroup(MaterialSlot, r.gpu.group)
	pass.SetVertexBuffer(r.gpu.vertex)
	if r.material.Transparent() {
		pass.SetPipeline(cullFront)
		pass.Draw(0, len(r.vertices))
	}
	pass.SetPipeline(cullBack)
	pass.Draw(0, len(r.vertices))
}

// Release frees GPU resources. The entry must not be rendered afterwards.
func (r *Resource) Release() {
	if r.gpu == nil {
		return
	}
	r.gpu.group.Release()
	r.gpu.vertex.Release()
	r.gpu.material.Release()
	r.gpu = nil
}
