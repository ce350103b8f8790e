package meshio

import (
	"fmt"
	"slices"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// PrimitiveCells is the marching cubes resolution along the longest axis.
const PrimitiveCells = 48

// Primitives lists the names accepted by Primitive.
var Primitives = []string{"box", "sphere", "cylinder"}

// Primitive tessellates a solid centered at the origin. size is the edge
// length of the box and the diameter and height of the sphere and cylinder.
func Primitive(name string, size float64) (Mesh, error) {
	if size <= 0 {
		return Mesh{}, fmt.Errorf("%w: primitive size %g", ErrMalformed, size)
	}

	var (
		solid sdf.SDF3
		err   error
	)
	switch name {
	case "box":
		solid, err = sdf.Box3D(v3.Vec{X: size, Y: size, Z: size}, 0)
	case "sphere":
		solid, err = sdf.Sphere3D(size / 2)
	case "cylinder":
		solid, err = sdf.Cylinder3D(size, size/2, 0)
	default:
		return Mesh{}, fmt.Errorf("%w: primitive %q (want one of %v)", ErrUnsupportedFormat, name, Primitives)
	}
	if err != nil {
		return Mesh{}, fmt.Errorf("%s: %w", name, err)
	}

	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(PrimitiveCells))
	soup := make([]float64, 0, len(triangles)*9)
	for _, tri := range triangles {
		for j := range 3 {
			soup = append(soup, tri[j].X, tri[j].Y, tri[j].Z)
		}
	}
	return Weld(soup, 1e-9), nil
}

// IsPrimitive reports whether name is a known primitive.
func IsPrimitive(name string) bool {
	return slices.Contains(Primitives, name)
}
