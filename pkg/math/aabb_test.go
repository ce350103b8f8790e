package math

import "testing"

func TestEmptyAABB(t *testing.T) {
	b := EmptyAABB()
	if !b.IsEmpty() {
		t.Error("EmptyAABB should be empty")
	}

	b = b.Extend(Vec3{1, 2, 3})
	if b.IsEmpty() {
		t.Error("box with one point should not be empty")
	}
	if b.Min != b.Max {
		t.Errorf("single point box: min %v != max %v", b.Min, b.Max)
	}
}

func TestAABBMerge(t *testing.T) {
	a := EmptyAABB().Extend(Vec3{-1, -1, -1}).Extend(Vec3{0, 0, 0})
	b := EmptyAABB().Extend(Vec3{2, 3, 4})

	m := a.Merge(b)
	if m.Min != (Vec3{-1, -1, -1}) || m.Max != (Vec3{2, 3, 4}) {
		t.Errorf("Merge: got %v", m)
	}

	if got := a.Merge(EmptyAABB()); got != a {
		t.Errorf("merging empty box changed result: %v", got)
	}
}

func TestAABBCenterDiagonal(t *testing.T) {
	b := AABB{Min: Vec3{-0.5, -0.5, -0.5}, Max: Vec3{0.5, 0.5, 0.5}}

	if c := b.Center(); c != (Vec3{}) {
		t.Errorf("Center: got %v, want origin", c)
	}
	if d := b.Diagonal(); abs(d-1.7320508) > 0.0001 {
		t.Errorf("Diagonal: got %v, want sqrt(3)", d)
	}
}
