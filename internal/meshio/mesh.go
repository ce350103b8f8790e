// Package meshio reads and writes triangle meshes as flat coordinate and
// index arrays, and builds procedural and merged meshes.
package meshio

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshview/pkg/math"
)

var (
	// ErrUnsupportedFormat is returned for file extensions with no reader or writer.
	ErrUnsupportedFormat = errors.New("meshio: unsupported format")
	// ErrMalformed is returned for structurally invalid mesh data.
	ErrMalformed = errors.New("meshio: malformed mesh")
)

// Mesh is an indexed triangle mesh. Points holds xyz triples and Triangles
// holds zero-based index triples into Points.
type Mesh struct {
	Points    []float64
	Triangles []uint32
}

// VertexCount returns the number of points.
func (m Mesh) VertexCount() int {
	return len(m.Points) / 3
}

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int {
	return len(m.Triangles) / 3
}

// Point returns point i.
func (m Mesh) Point(i uint32) [3]float64 {
	j := int(i) * 3
	return [3]float64{m.Points[j], m.Points[j+1], m.Points[j+2]}
}

// Validate checks array lengths and index ranges.
func (m Mesh) Validate() error {
	if len(m.Points)%3 != 0 {
		return fmt.Errorf("%w: %d coordinates is not a multiple of 3", ErrMalformed, len(m.Points))
	}
	if len(m.Triangles)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrMalformed, len(m.Triangles))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Triangles {
		if idx >= n {
			return fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrMalformed, i/3, idx, n)
		}
	}
	return nil
}

// Bounds returns the box around the points.
func (m Mesh) Bounds() math.AABB {
	box := math.EmptyAABB()
	for i := 0; i+2 < len(m.Points); i += 3 {
		box = box.Extend(math.Vec3{X: float32(m.Points[i]), Y: float32(m.Points[i+1]), Z: float32(m.Points[i+2])})
	}
	return box
}
