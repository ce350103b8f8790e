// Package app runs the interactive viewer: it wires the window, input,
// GL device, scene and file watcher into a frame loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/debug"
	"github.com/Faultbox/meshview/internal/engine/glgpu"
	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/input"
	"github.com/Faultbox/meshview/internal/engine/scene"
	"github.com/Faultbox/meshview/internal/engine/window"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/math"
)

// Options selects what the viewer opens with.
type Options struct {
	Files []string
	// Demo adds one of each procedural primitive.
	Demo bool
}

// App is the running viewer.
type App struct {
	cfg     *config.Config
	win     *window.Window
	dev     *glgpu.Device
	input   *input.Input
	sess    *session
	watcher *watcher
	shots   *debug.ScreenshotCapture
}

// New opens the window and loads the initial meshes. Files that fail to
// load are logged and skipped.
func New(cfg *config.Config, opts Options) (*App, error) {
	win, err := window.New(window.Config{
		Title:      "meshview",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		MSAA:       cfg.Graphics.MSAA,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The device must be created after the window, which owns the GL context.
	dev, err := glgpu.New(win)
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	a := &App{
		cfg:   cfg,
		win:   win,
		dev:   dev,
		input: input.New(),
		sess:  newSession(cfg.Viewer, newViewer(cfg.Viewer, dev)),
		shots: debug.NewScreenshotCapture(cfg.Screenshots.Dir, cfg.Screenshots.Prefix),
	}

	if cfg.Watch.Enabled {
		w, err := newWatcher(cfg.Watch.Debounce)
		if err != nil {
			logger.Warn("file watching disabled", zap.Error(err))
		} else {
			a.watcher = w
			a.sess.watch = w.Add
		}
	}

	for _, path := range opts.Files {
		if _, err := a.sess.load(path); err != nil {
			logger.Error("cannot load file", zap.String("path", path), zap.Error(err))
		}
	}
	if opts.Demo {
		addDemo(a.sess)
	}
	return a, nil
}

// addDemo lays the primitives out along the x axis.
func addDemo(s *session) {
	for i, name := range []string{"box", "sphere", "cylinder"} {
		offset := math.Vec3{X: float32(i-1) * 1.5}
		if _, err := s.addPrimitive(name, 1, offset); err != nil {
			logger.Warn("demo primitive failed", zap.String("primitive", name), zap.Error(err))
		}
	}
}

// newViewer creates a viewer rendering to dev.
func newViewer(cfg config.ViewerConfig, dev gpu.Device) *scene.Viewer {
	handle := gpu.NewHandle()
	handle.Set(dev)
	return scene.New(handle, viewerOptions(cfg))
}

func viewerOptions(cfg config.ViewerConfig) scene.Options {
	cam := camera.New()
	cam.Eye = math.Vec3{X: cfg.Eye[0], Y: cfg.Eye[1], Z: cfg.Eye[2]}
	cam.FovY = cfg.FOVDegrees * math32.Pi / 180
	cam.Near = cfg.Near
	cam.Far = cfg.Far
	cam.MinZoom = cfg.MinZoom
	cam.ZoomStep = cfg.ZoomStep

	opts := scene.DefaultOptions()
	opts.Camera = cam
	opts.TrackballSpeed = cfg.TrackballSpeed
	opts.Light = math.Vec3{X: cfg.LightPosition[0], Y: cfg.LightPosition[1], Z: cfg.LightPosition[2]}
	if cfg.Seed != 0 {
		opts.Rand = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}
	return opts
}

// Run drives the frame loop until the window closes, Esc is pressed or
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	var frameBudget time.Duration
	if a.cfg.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(a.cfg.Graphics.FPSLimit)
	}

	frameCount := 0
	fpsTimer := time.Now()
	lastTitle := -1

	logger.Info("starting frame loop")
	for {
		start := time.Now()
		if err := ctx.Err(); err != nil {
			return nil
		}

		a.input.Update()
		scale := a.win.PixelScale()
		for _, ev := range a.input.Events() {
			switch a.sess.handleEvent(ev, scale) {
			case actionQuit:
				return nil
			case actionScreenshot:
				a.screenshot()
			}
		}

		a.sess.pollFix()
		a.drainWatcher()

		if err := a.sess.viewer.Render(); err != nil {
			if !errors.Is(err, gpu.ErrSurfaceLost) {
				return fmt.Errorf("render error: %w", err)
			}
			// Minimized: idle until the drawable comes back.
			time.Sleep(50 * time.Millisecond)
			continue
		}

		if n := a.sess.viewer.Len(); n != lastTitle {
			a.win.SetTitle(fmt.Sprintf("meshview (%d meshes)", n))
			lastTitle = n
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
		if frameBudget > 0 {
			if left := frameBudget - time.Since(start); left > 0 {
				time.Sleep(left)
			}
		}
	}
}

func (a *App) drainWatcher() {
	if a.watcher == nil {
		return
	}
	for {
		select {
		case path := <-a.watcher.Events():
			if err := a.sess.reload(path); err != nil {
				logger.Warn("reload failed", zap.String("path", path), zap.Error(err))
			}
		default:
			return
		}
	}
}

func (a *App) screenshot() {
	path, err := a.shots.Capture(a.dev)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close releases GPU resources, stops watching and destroys the window.
func (a *App) Close() {
	logger.Info("closing viewer")
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			logger.Warn("closing watcher", zap.Error(err))
		}
	}
	a.sess.viewer.Close()
	a.win.Close()
}
