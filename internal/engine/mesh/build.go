package mesh

import "github.com/Faultbox/meshview/pkg/math"

var corners = [3][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// BuildFlatVertices expands indexed triangles into three unshared vertices
// per triangle, each carrying the face normal. points holds xyz triples and
// triangles holds index triples; both are trusted to be well formed.
func BuildFlatVertices(points []float64, triangles []uint32) []Vertex {
	vertices := make([]Vertex, 0, len(triangles))
	for t := 0; t+2 < len(triangles); t += 3 {
		p := [3]math.Vec3{
			point(points, triangles[t]),
			point(points, triangles[t+1]),
			point(points, triangles[t+2]),
		}
		n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Normalize().Array()
		for i := range p {
			vertices = append(vertices, Vertex{
				Position: p[i].Array(),
				Normal:   n,
				Bary:     corners[i],
			})
		}
	}
	return vertices
}

func point(points []float64, i uint32) math.Vec3 {
	j := int(i) * 3
	return math.Vec3{X: float32(points[j]), Y: float32(points[j+1]), Z: float32(points[j+2])}
}

// Bounds returns the axis-aligned box around the vertex positions.
func Bounds(vertices []Vertex) math.AABB {
	box := math.EmptyAABB()
	for i := range vertices {
		p := vertices[i].Position
		box = box.Extend(math.Vec3{X: p[0], Y: p[1], Z: p[2]})
	}
	return box
}
