// Package camera holds the viewer camera state: a fixed look-at eye, a
// user zoom, auto-framing derived from the scene bounds, and the trackball
// orientation.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshview/pkg/math"
)

// Camera is the viewer camera.
type Camera struct {
	Eye    math.Vec3
	Center math.Vec3
	Up     math.Vec3

	FovY float32 // radians
	Near float32
	Far  float32

	// Zoom is the user multiplier, never below MinZoom.
	Zoom     float32
	MinZoom  float32
	ZoomStep float32

	// Derived from the scene bounds by Frame.
	BaseZoom        float32
	BaseTranslation math.Vec3

	Orientation math.Quat
}

// New returns a camera at (0,0,5) looking at the origin with a 45° field of view.
func New() *Camera {
	return &Camera{
		Eye:         math.Vec3{X: 0, Y: 0, Z: 5},
		Center:      math.Vec3{},
		Up:          math.AxisY,
		FovY:        45 * math32.Pi / 180,
		Near:        1,
		Far:         100,
		Zoom:        1,
		MinZoom:     0.1,
		ZoomStep:    0.05,
		BaseZoom:    1,
		Orientation: math.QuatIdentity(),
	}
}

// View returns lookAt · scale(baseZoom·zoom) · rotate(orientation) · translate(baseTranslation).
func (c *Camera) View() math.Mat4 {
	return math.LookAt(c.Eye, c.Center, c.Up).
		Mul(math.ScaleUniform(c.BaseZoom * c.Zoom)).
		Mul(c.Orientation.ToMat4()).
		Mul(math.TranslateVec(c.BaseTranslation))
}

// NormalMatrix returns transpose(inverse(view)). A singular view matrix
// cannot arise from valid camera parameters and panics.
func NormalMatrix(view math.Mat4) math.Mat4 {
	inv, ok := view.Invert()
	if !ok {
		panic("camera: view matrix is not invertible")
	}
	return inv.Transpose()
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c *Camera) Projection(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// Frame centers the box and scales it so its diagonal spans one unit.
// An empty box leaves the camera unchanged and reports false.
func (c *Camera) Frame(box math.AABB) bool {
	if box.IsEmpty() {
		return false
	}
	c.BaseTranslation = box.Center().Neg()
	if d := box.Diagonal(); d > 0 {
		c.BaseZoom = 1 / d
	} else {
		c.BaseZoom = 1
	}
	return true
}

// Scroll zooms in for positive delta and out for negative, by one
// ZoomStep per event, clamped at MinZoom. It reports whether zoom changed.
func (c *Camera) Scroll(deltaY float64) bool {
	if deltaY == 0 {
		return false
	}
	prev := c.Zoom
	if deltaY > 0 {
		c.Zoom *= 1 + c.ZoomStep
	} else {
		c.Zoom /= 1 + c.ZoomStep
	}
	c.Zoom = max(c.Zoom, c.MinZoom)
	return c.Zoom != prev
}

// Reset restores the user zoom and orientation.
func (c *Camera) Reset() {
	c.Zoom = 1
	c.Orientation = math.QuatIdentity()
}
