// Package mesh holds the per-mesh GPU resource: flat-shaded vertices,
// material uniforms, dirty tracking and draw submission.
package mesh

import (
	"unsafe"

	"github.com/Faultbox/meshview/internal/engine/gpu"
)

// Vertex is one flat-shaded vertex. Bary is the barycentric corner of the
// vertex inside its triangle and drives the edge overlay.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Bary     [3]float32
}

// VertexStride is the size of Vertex in bytes.
const VertexStride = int(unsafe.Sizeof(Vertex{}))

// Shader attribute locations.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribBary     = 2
)

// VertexLayout describes Vertex for pipeline creation.
func VertexLayout() gpu.VertexLayout {
	return gpu.VertexLayout{
		Stride: VertexStride,
		Attributes: []gpu.VertexAttribute{
			{Location: AttribPosition, Components: 3, Offset: 0},
			{Location: AttribNormal, Components: 3, Offset: 12},
			{Location: AttribBary, Components: 3, Offset: 24},
		},
	}
}

// vertexBytes views vertices as raw bytes without copying.
func vertexBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*VertexStride)
}

// OpaqueAlpha is the face alpha at or above which a mesh is drawn as opaque.
const OpaqueAlpha = 0.999

// Material is the per-mesh uniform block. Diffuse[3] is the face alpha.
type Material struct {
	Ambient   [4]float32
	Diffuse   [4]float32
	Specular  [4]float32
	EdgeColor [4]float32
	EdgeWidth float32
}

// MaterialSize is the std140 size of the material block in bytes.
const MaterialSize = 80

// DefaultMaterial returns an opaque material for the given face color
// with the edge overlay disabled.
func DefaultMaterial(color [3]float32) Material {
	return Material{
		Ambient:   [4]float32{0.2 * color[0], 0.2 * color[1], 0.2 * color[2], 1},
		Diffuse:   [4]float32{color[0], color[1], color[2], 1},
		Specular:  [4]float32{0.3, 0.3, 0.3, 1},
		EdgeColor: [4]float32{0, 0, 0, 1},
	}
}

// Alpha returns the face alpha.
func (m Material) Alpha() float32 {
	return m.Diffuse[3]
}

// Transparent reports whether faces are blended.
func (m Material) Transparent() bool {
	return m.Diffuse[3] < OpaqueAlpha
}

// Bytes encodes the material in std140 layout.
func (m Material) Bytes() []byte {
	var block [MaterialSize / 4]float32
	copy(block[0:4], m.Ambient[:])
	copy(block[4:8], m.Diffuse[:])
	copy(block[8:12], m.Specular[:])
	copy(block[12:16], m.EdgeColor[:])
	block[16] = m.EdgeWidth
	out := make([]byte, MaterialSize)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(&block[0])), MaterialSize))
	return out
}

// DirtyFlags marks CPU state that has diverged from the GPU copy.
type DirtyFlags uint8

const (
	DirtyVertex DirtyFlags = 1 << iota
	DirtyEdge
	DirtyFace
	DirtyMaterial

	DirtyAll = DirtyVertex | DirtyEdge | DirtyFace | DirtyMaterial
)

// Has reports whether every bit in f is set.
func (d DirtyFlags) Has(f DirtyFlags) bool {
	return d&f == f
}
