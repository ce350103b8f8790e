package math

import gomath "math"

// AABB is an axis-aligned bounding box. The zero value is not empty;
// use EmptyAABB as the identity for Extend and Merge.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns an inverted box that any point will extend.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
		Max: Vec3{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
	}
}

// IsEmpty reports whether no point has been added to the box.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows the box to contain p.
func (b AABB) Extend(p Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Merge grows the box to contain other. Merging an empty box is a no-op.
func (b AABB) Merge(other AABB) AABB {
	if other.IsEmpty() {
		return b
	}
	return b.Extend(other.Min).Extend(other.Max)
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Diagonal returns the length of the box diagonal.
func (b AABB) Diagonal() float32 {
	return b.Size().Length()
}
