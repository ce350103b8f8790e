package camera

import "github.com/Faultbox/meshview/pkg/math"

// Trackball maps a drag from anchorPos to pos onto an orientation using a
// fixed-up two-axis valuator: horizontal motion yaws about world up,
// vertical motion pitches about world right. A drag across the full
// width turns by speed radians. The result is composed onto the anchored
// orientation and renormalized.
func Trackball(width, height int, speed float32, anchor math.Quat, anchorPos, pos math.Vec2) math.Quat {
	if width <= 0 || height <= 0 {
		return anchor
	}
	d := pos.Sub(anchorPos)
	yaw := math.QuatFromAxisAngle(math.AxisY, d.X/float32(width)*speed)
	pitch := math.QuatFromAxisAngle(math.AxisX, d.Y/float32(height)*speed)
	return yaw.Mul(pitch).Mul(anchor).Normalize()
}
