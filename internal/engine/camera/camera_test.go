package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/meshview/pkg/math"
)

func approx(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func quatApprox(a, b math.Quat) bool {
	// q and -q are the same rotation
	return gomath.Abs(float64(a.Dot(b))) > 1-1e-5
}

func unitCube() math.AABB {
	return math.AABB{
		Min: math.Vec3{X: -0.5, Y: -0.5, Z: -0.5},
		Max: math.Vec3{X: 0.5, Y: 0.5, Z: 0.5},
	}
}

func TestFrameUnitCube(t *testing.T) {
	c := New()
	if !c.Frame(unitCube()) {
		t.Fatal("Frame should accept a non-empty box")
	}
	if !approx(c.BaseZoom, 0.57735) {
		t.Errorf("BaseZoom = %f, want ~0.577", c.BaseZoom)
	}
	if c.BaseTranslation != (math.Vec3{}) {
		t.Errorf("BaseTranslation = %+v, want origin", c.BaseTranslation)
	}
}

func TestFrameOffsetBox(t *testing.T) {
	c := New()
	c.Frame(math.AABB{Min: math.Vec3{X: 1, Y: 2, Z: 3}, Max: math.Vec3{X: 3, Y: 2, Z: 3}})
	want := math.Vec3{X: -2, Y: -2, Z: -3}
	if c.BaseTranslation != want {
		t.Errorf("BaseTranslation = %+v, want %+v", c.BaseTranslation, want)
	}
	if !approx(c.BaseZoom, 0.5) {
		t.Errorf("BaseZoom = %f, want 0.5", c.BaseZoom)
	}
}

func TestFrameEmptyAndPoint(t *testing.T) {
	c := New()
	c.BaseZoom = 3
	if c.Frame(math.EmptyAABB()) {
		t.Error("empty box should not frame")
	}
	if c.BaseZoom != 3 {
		t.Error("empty box changed BaseZoom")
	}

	p := math.Vec3{X: 1, Y: 1, Z: 1}
	c.Frame(math.AABB{Min: p, Max: p})
	if c.BaseZoom != 1 {
		t.Errorf("degenerate box BaseZoom = %f, want 1", c.BaseZoom)
	}
}

func TestScroll(t *testing.T) {
	tests := []struct {
		name   string
		deltas []float64
		want   float32
	}{
		{"zero", []float64{0}, 1},
		{"in", []float64{1}, 1.05},
		{"out", []float64{-1}, 1 / 1.05},
		{"magnitude ignored", []float64{120}, 1.05},
		{"in then out", []float64{1, -1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			for _, d := range tt.deltas {
				c.Scroll(d)
			}
			if !approx(c.Zoom, tt.want) {
				t.Errorf("Zoom = %f, want %f", c.Zoom, tt.want)
			}
		})
	}
}

func TestScrollClamp(t *testing.T) {
	c := New()
	for range 200 {
		c.Scroll(-1)
	}
	if c.Zoom != 0.1 {
		t.Errorf("Zoom = %f, want floor 0.1", c.Zoom)
	}
	if c.Scroll(-1) {
		t.Error("scroll at the floor should report no change")
	}
}

func TestViewMapsFramedCenterToAxis(t *testing.T) {
	c := New()
	c.Frame(math.AABB{Min: math.Vec3{X: 10, Y: 10, Z: 10}, Max: math.Vec3{X: 12, Y: 12, Z: 12}})
	p := c.View().TransformPoint([3]float32{11, 11, 11})
	if !approx(p[0], 0) || !approx(p[1], 0) || !approx(p[2], -5) {
		t.Errorf("box center maps to %v, want (0,0,-5)", p)
	}
}

func TestNormalMatrix(t *testing.T) {
	c := New()
	c.Orientation = math.QuatFromAxisAngle(math.AxisY, 0.7)
	view := c.View()
	n := NormalMatrix(view)
	inv, _ := view.Invert()
	if n != inv.Transpose() {
		t.Error("NormalMatrix should be transpose(inverse(view))")
	}
}

func TestNormalMatrixPanicsOnSingular(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a singular view matrix")
		}
	}()
	NormalMatrix(math.Mat4{})
}

func TestReset(t *testing.T) {
	c := New()
	c.Zoom = 4
	c.Orientation = math.QuatFromAxisAngle(math.AxisX, 1)
	c.Reset()
	if c.Zoom != 1 || c.Orientation != math.QuatIdentity() {
		t.Errorf("Reset left zoom=%f orientation=%+v", c.Zoom, c.Orientation)
	}
}
