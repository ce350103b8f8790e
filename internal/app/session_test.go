package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/gpu/gputest"
	"github.com/Faultbox/meshview/internal/engine/input"
	"github.com/Faultbox/meshview/internal/engine/scene"
	"github.com/Faultbox/meshview/internal/meshio"
	"github.com/Faultbox/meshview/pkg/math"
)

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func newTestSession(t *testing.T) (*session, *gputest.Device) {
	t.Helper()
	dev := gputest.NewDevice(640, 480)
	cfg := config.Default().Viewer
	cfg.Seed = 7
	s := newSession(cfg, newViewer(cfg, dev))
	s.exportDir = t.TempDir()
	return s, dev
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestViewerOptionsFromConfig(t *testing.T) {
	cfg := config.Default().Viewer
	cfg.FOVDegrees = 90
	cfg.Eye = [3]float32{0, 0, 9}
	cfg.Seed = 3

	opts := viewerOptions(cfg)
	if opts.Camera.Eye.Z != 9 {
		t.Errorf("Eye = %+v", opts.Camera.Eye)
	}
	if d := opts.Camera.FovY - 1.5707964; d > 1e-6 || d < -1e-6 {
		t.Errorf("FovY = %v, want pi/2", opts.Camera.FovY)
	}
	if opts.Rand == nil {
		t.Error("seeded config should set Rand")
	}
	if opts.TrackballSpeed != cfg.TrackballSpeed {
		t.Errorf("TrackballSpeed = %v", opts.TrackballSpeed)
	}
}

func TestLoadAndReload(t *testing.T) {
	s, _ := newTestSession(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "part.obj", triangleOBJ)

	var watched []string
	s.watch = func(p string) error { watched = append(watched, p); return nil }

	id, err := s.load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if name, _ := s.viewer.Name(id); name != "part.obj" {
		t.Errorf("Name = %q", name)
	}
	if len(watched) != 1 || watched[0] != path {
		t.Errorf("watched = %v", watched)
	}

	writeFile(t, dir, "part.obj", triangleOBJ+"v 0 0 1\nf 1 2 4\n")
	if err := s.reload(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	_, triangles, _ := s.viewer.Source(id)
	if len(triangles) != 6 {
		t.Errorf("reloaded triangles = %v", triangles)
	}

	if err := s.reload(filepath.Join(dir, "unknown.obj")); err != nil {
		t.Errorf("reload of an unloaded path = %v", err)
	}

	if _, err := s.load(filepath.Join(dir, "missing.obj")); err == nil {
		t.Error("loading a missing file should fail")
	}
}

func TestWireframeAndTransparencyToggles(t *testing.T) {
	s, _ := newTestSession(t)
	a, _ := s.addPrimitive("box", 1, math.Vec3{})
	b := s.viewer.AppendMesh([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2}, nil)

	s.handleKey(sdl.K_w)
	s.handleKey(sdl.K_t)
	for _, id := range []scene.MeshID{a, b} {
		mat, _ := s.viewer.Material(id)
		if mat.EdgeWidth != s.cfg.EdgeWidth {
			t.Errorf("%s EdgeWidth = %v", id, mat.EdgeWidth)
		}
		if mat.Alpha() != s.cfg.TransparentAlpha {
			t.Errorf("%s alpha = %v", id, mat.Alpha())
		}
	}

	// New meshes follow the active style.
	c, _ := s.addPrimitive("sphere", 1, math.Vec3{})
	if mat, _ := s.viewer.Material(c); mat.EdgeWidth == 0 || !mat.Transparent() {
		t.Error("new mesh did not pick up the active style")
	}

	s.handleKey(sdl.K_w)
	s.handleKey(sdl.K_t)
	if mat, _ := s.viewer.Material(a); mat.EdgeWidth != 0 || mat.Transparent() {
		t.Errorf("toggles did not revert: %+v", mat)
	}
}

func TestToggleVisibleAndRemoveLast(t *testing.T) {
	s, _ := newTestSession(t)
	var ids []scene.MeshID
	for range 3 {
		ids = append(ids, s.viewer.AppendMesh([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2}, nil))
	}

	s.handleKey(sdl.K_3)
	if s.viewer.Visible(ids[2]) {
		t.Fatal("key 3 did not hide the third mesh")
	}
	s.handleKey(sdl.K_9)

	s.handleKey(sdl.K_BACKSPACE)
	if s.viewer.Len() != 2 {
		t.Fatalf("Len = %d after remove", s.viewer.Len())
	}
	if _, ok := s.viewer.Name(ids[1]); ok {
		t.Error("removed the hidden mesh instead of the last visible one")
	}
	if _, ok := s.viewer.Name(ids[2]); !ok {
		t.Error("hidden mesh should remain")
	}
}

func TestExport(t *testing.T) {
	s, _ := newTestSession(t)
	if _, err := s.export(); err == nil {
		t.Error("export of an empty scene should fail")
	}

	tri := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}
	s.viewer.AppendMesh(tri, []uint32{0, 1, 2}, nil)
	s.viewer.AppendMesh(tri, []uint32{0, 2, 1}, nil)
	hidden := s.viewer.AppendMesh(tri, []uint32{0, 1, 2}, nil)
	s.viewer.SetVisible(hidden, false)

	path, err := s.export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	m, err := meshio.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 6 || m.TriangleCount() != 2 {
		t.Errorf("exported %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	}
}

func TestHandleEvent(t *testing.T) {
	s, _ := newTestSession(t)
	s.viewer.AppendMesh([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2}, nil)

	if got := s.handleEvent(input.Event{Type: input.EventQuit}, 1); got != actionQuit {
		t.Errorf("quit = %v", got)
	}
	if got := s.handleEvent(input.Event{Type: input.EventKeyDown, Key: sdl.K_ESCAPE}, 1); got != actionQuit {
		t.Errorf("escape = %v", got)
	}
	if got := s.handleEvent(input.Event{Type: input.EventKeyDown, Key: sdl.K_F12}, 1); got != actionScreenshot {
		t.Errorf("F12 = %v", got)
	}

	s.handleEvent(input.Event{Type: input.EventMouseDown, Button: input.ButtonLeft}, 1)
	if s.viewer.Dragging() != scene.ButtonLeft {
		t.Fatal("left press did not start a drag")
	}
	s.handleEvent(input.Event{Type: input.EventMouseMove, MouseX: 10, MouseY: 10}, 2)
	s.handleEvent(input.Event{Type: input.EventMouseMove, MouseX: 100, MouseY: 10}, 2)
	s.handleEvent(input.Event{Type: input.EventMouseUp, Button: input.ButtonLeft}, 1)
	if s.viewer.Dragging() != scene.ButtonNone {
		t.Error("release did not end the drag")
	}
	if s.viewer.Camera().Orientation.W == 1 {
		t.Error("drag did not rotate")
	}

	s.handleEvent(input.Event{Type: input.EventMouseWheel, WheelY: 1}, 1)
	if s.viewer.Camera().Zoom <= 1 {
		t.Error("wheel did not zoom")
	}

	dir := t.TempDir()
	s.handleEvent(input.Event{Type: input.EventDropFile, Path: writeFile(t, dir, "a.txt", "x")}, 1)
	if s.viewer.Len() != 1 {
		t.Error("unsupported drop was loaded")
	}
	s.handleEvent(input.Event{Type: input.EventDropFile, Path: writeFile(t, dir, "b.obj", triangleOBJ)}, 1)
	if s.viewer.Len() != 2 {
		t.Error("dropped OBJ not loaded")
	}
}

func TestFixKey(t *testing.T) {
	s, _ := newTestSession(t)
	s.viewer.AppendMesh([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2}, nil)
	s.handleKey(sdl.K_f)
	if !s.fixer.Busy() {
		t.Fatal("F did not start a fix")
	}
	// A second press while busy is rejected without side effects.
	s.handleKey(sdl.K_f)
}

func TestViewerClearsToBlack(t *testing.T) {
	s, dev := newTestSession(t)
	s.viewer.AppendMesh([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2}, nil)
	if err := s.viewer.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if want := (gpu.Color{A: 1}); dev.LastPass.ClearColor != want {
		t.Errorf("ClearColor = %+v, want %+v", dev.LastPass.ClearColor, want)
	}
}

func TestFixResultFollowsStyle(t *testing.T) {
	s, _ := newTestSession(t)
	s.fixer = scene.NewFixer(0)
	s.viewer.AppendMesh([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2}, nil)

	s.handleKey(sdl.K_w)
	s.handleKey(sdl.K_t)
	s.handleKey(sdl.K_f)

	deadline := time.Now().Add(5 * time.Second)
	var id scene.MeshID
	for {
		var ok bool
		if id, ok = s.pollFix(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("fix never finished")
		}
		time.Sleep(time.Millisecond)
	}

	mat, _ := s.viewer.Material(id)
	if mat.Alpha() != s.cfg.TransparentAlpha {
		t.Errorf("merged alpha = %v, want %v", mat.Alpha(), s.cfg.TransparentAlpha)
	}
	if mat.EdgeWidth != s.cfg.EdgeWidth {
		t.Errorf("merged EdgeWidth = %v, want %v", mat.EdgeWidth, s.cfg.EdgeWidth)
	}
}
