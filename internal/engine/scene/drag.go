package scene

import (
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/pkg/math"
)

// MouseButton identifies a pointer button.
type MouseButton uint8

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonRight
)

// dragState is Idle (button == ButtonNone), DraggingLeft or DraggingRight.
// The anchor is taken on the first move after the press.
type dragState struct {
	button     MouseButton
	anchored   bool
	anchorPos  math.Vec2
	anchorQuat math.Quat
}

// MouseDown starts a drag. A press while another drag is active is ignored.
func (v *Viewer) MouseDown(b MouseButton) {
	if v.drag.button != ButtonNone || (b != ButtonLeft && b != ButtonRight) {
		return
	}
	v.drag = dragState{button: b}
}

// MouseUp ends the drag started by b.
func (v *Viewer) MouseUp(b MouseButton) {
	if v.drag.button == b {
		v.drag = dragState{}
	}
}

// Dragging returns the button of the active drag, or ButtonNone.
func (v *Viewer) Dragging() MouseButton {
	return v.drag.button
}

// MouseMove tracks the pointer. During a left drag the orientation follows
// the trackball relative to the anchor; right drags only record an anchor.
func (v *Viewer) MouseMove(pos math.Vec2) {
	v.cursor = pos
	if v.drag.button == ButtonNone {
		return
	}
	if !v.drag.anchored {
		v.drag.anchored = true
		v.drag.anchorPos = pos
		v.drag.anchorQuat = v.cam.Orientation
	}
	if v.drag.button != ButtonLeft {
		return
	}

	w, h := v.drawableSize()
	q := camera.Trackball(w, h, v.speed, v.drag.anchorQuat, v.drag.anchorPos, pos)
	if q != v.cam.Orientation {
		v.cam.Orientation = q
		v.refreshMatrix = true
	}
}

func (v *Viewer) drawableSize() (int, int) {
	dev, ok := v.handle.Device()
	if !ok {
		return 0, 0
	}
	return dev.Size()
}
