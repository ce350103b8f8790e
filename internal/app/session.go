package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/input"
	"github.com/Faultbox/meshview/internal/engine/scene"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/internal/meshio"
	"github.com/Faultbox/meshview/pkg/math"
)

// action is a request from a key press that needs the window or device.
type action int

const (
	actionNone action = iota
	actionQuit
	actionScreenshot
)

// session owns the viewer state driven by user input, independent of the
// window it is shown in.
type session struct {
	cfg    config.ViewerConfig
	viewer *scene.Viewer
	fixer  *scene.Fixer

	// sources maps meshes loaded from disk to their absolute paths.
	sources map[scene.MeshID]string
	// watch, when set, is called for every file loaded.
	watch func(path string) error

	wireframe   bool
	transparent bool
	exportDir   string
	now         func() time.Time
}

func newSession(cfg config.ViewerConfig, viewer *scene.Viewer) *session {
	return &session{
		cfg:       cfg,
		viewer:    viewer,
		fixer:     scene.NewFixer(cfg.FixDelay),
		sources:   make(map[scene.MeshID]string),
		exportDir: ".",
		now:       time.Now,
	}
}

// load reads a mesh file and appends it, named after the file.
func (s *session) load(path string) (scene.MeshID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return scene.MeshID{}, err
	}
	m, err := meshio.LoadFile(abs)
	if err != nil {
		return scene.MeshID{}, err
	}

	id := s.add(m, filepath.Base(abs))
	s.sources[id] = abs
	if s.watch != nil {
		if err := s.watch(abs); err != nil {
			logger.Warn("cannot watch file", zap.String("path", abs), zap.Error(err))
		}
	}
	logger.Info("mesh loaded",
		zap.String("path", abs),
		zap.Stringer("mesh", id),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()))
	return id, nil
}

// addPrimitive appends a tessellated demo solid.
func (s *session) addPrimitive(name string, size float64, offset math.Vec3) (scene.MeshID, error) {
	m, err := meshio.Primitive(name, size)
	if err != nil {
		return scene.MeshID{}, err
	}
	for i := 0; i+2 < len(m.Points); i += 3 {
		m.Points[i] += float64(offset.X)
		m.Points[i+1] += float64(offset.Y)
		m.Points[i+2] += float64(offset.Z)
	}
	return s.add(m, name), nil
}

func (s *session) add(m meshio.Mesh, name string) scene.MeshID {
	id := s.viewer.AppendMesh(m.Points, m.Triangles, nil)
	s.viewer.SetName(id, name)
	s.applyStyle(id)
	return id
}

// reload re-reads path into every mesh loaded from it.
func (s *session) reload(path string) error {
	var ids []scene.MeshID
	for id, p := range s.sources {
		if p == path {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	m, err := meshio.LoadFile(path)
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.viewer.SetMeshData(id, m.Points, m.Triangles)
	}
	logger.Info("mesh reloaded", zap.String("path", path), zap.Int("triangles", m.TriangleCount()))
	return nil
}

func (s *session) applyStyle(id scene.MeshID) {
	if s.wireframe {
		s.viewer.SetEdgeColor(id, s.cfg.EdgeColor)
		s.viewer.SetEdgeWidth(id, s.cfg.EdgeWidth)
	} else {
		s.viewer.SetEdgeWidth(id, 0)
	}
	if s.transparent {
		s.viewer.SetFaceAlpha(id, s.cfg.TransparentAlpha)
	} else {
		s.viewer.SetFaceAlpha(id, 1)
	}
}

func (s *session) restyle() {
	for _, e := range s.viewer.Entries() {
		s.applyStyle(e.ID)
	}
}

// toggleVisible flips the n-th (1-based) entry in id order.
func (s *session) toggleVisible(n int) bool {
	entries := s.viewer.Entries()
	if n < 1 || n > len(entries) {
		return false
	}
	e := entries[n-1]
	return s.viewer.SetVisible(e.ID, !e.Visible)
}

// removeLast deletes the most recently added visible mesh.
func (s *session) removeLast() bool {
	entries := s.viewer.Entries()
	for _, e := range slices.Backward(entries) {
		if e.Visible {
			delete(s.sources, e.ID)
			return s.viewer.RemoveData(e.ID)
		}
	}
	return false
}

// export writes the visible meshes, unmerged, to a timestamped OBJ file.
func (s *session) export() (string, error) {
	var parts []meshio.Mesh
	for _, e := range s.viewer.Entries() {
		if !e.Visible {
			continue
		}
		points, triangles, _ := s.viewer.Source(e.ID)
		parts = append(parts, meshio.Mesh{Points: points, Triangles: triangles})
	}
	if len(parts) == 0 {
		return "", errors.New("nothing visible to export")
	}

	name := fmt.Sprintf("meshview_%s.obj", s.now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.exportDir, name)
	if err := meshio.SaveFile(path, meshio.Concat(parts...)); err != nil {
		return "", err
	}
	return path, nil
}

func (s *session) fix() {
	if err := s.fixer.Start(s.viewer); err != nil {
		logger.Warn("fix not started", zap.Error(err))
	}
}

// pollFix applies a finished fix, styling the merged mesh like the rest.
func (s *session) pollFix() (scene.MeshID, bool) {
	id, ok := s.fixer.Poll(s.viewer)
	if ok {
		s.applyStyle(id)
		logger.Debug("fix applied", zap.Stringer("mesh", id))
	}
	return id, ok
}

// handleKey applies a key binding.
func (s *session) handleKey(key sdl.Keycode) action {
	switch {
	case key == sdl.K_ESCAPE:
		return actionQuit
	case key == sdl.K_F12:
		return actionScreenshot
	case key == sdl.K_r:
		s.viewer.Reframe()
	case key == sdl.K_HOME:
		s.viewer.ResetView()
	case key == sdl.K_f:
		s.fix()
	case key == sdl.K_w:
		s.wireframe = !s.wireframe
		s.restyle()
	case key == sdl.K_t:
		s.transparent = !s.transparent
		s.restyle()
	case key >= sdl.K_1 && key <= sdl.K_9:
		s.toggleVisible(int(key-sdl.K_1) + 1)
	case key == sdl.K_BACKSPACE:
		s.removeLast()
	case key == sdl.K_s:
		path, err := s.export()
		if err != nil {
			logger.Warn("export failed", zap.Error(err))
		} else {
			logger.Info("exported visible meshes", zap.String("path", path))
		}
	}
	return actionNone
}

// handleEvent routes one input event. scale maps window coordinates onto
// drawable pixels.
func (s *session) handleEvent(ev input.Event, scale float32) action {
	switch ev.Type {
	case input.EventQuit:
		return actionQuit
	case input.EventKeyDown:
		return s.handleKey(ev.Key)
	case input.EventMouseDown:
		if b := sceneButton(ev.Button); b != scene.ButtonNone {
			s.viewer.MouseDown(b)
		}
	case input.EventMouseUp:
		if b := sceneButton(ev.Button); b != scene.ButtonNone {
			s.viewer.MouseUp(b)
		}
	case input.EventMouseMove:
		s.viewer.MouseMove(math.Vec2{X: float32(ev.MouseX) * scale, Y: float32(ev.MouseY) * scale})
	case input.EventMouseWheel:
		s.viewer.MouseScroll(ev.WheelY)
	case input.EventDropFile:
		if !meshio.Supported(ev.Path) {
			logger.Warn("dropped file has an unsupported extension",
				zap.String("path", ev.Path),
				zap.String("supported", strings.Join(meshio.ReadExtensions, " ")))
			break
		}
		if _, err := s.load(ev.Path); err != nil {
			logger.Warn("cannot load dropped file", zap.Error(err))
		}
	}
	return actionNone
}

func sceneButton(b input.Button) scene.MouseButton {
	switch b {
	case input.ButtonLeft:
		return scene.ButtonLeft
	case input.ButtonRight:
		return scene.ButtonRight
	default:
		return scene.ButtonNone
	}
}
