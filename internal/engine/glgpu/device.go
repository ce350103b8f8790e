// Package glgpu implements gpu.Device on OpenGL 4.1 core.
//
// Bind group slot s, binding b maps to uniform buffer binding point s*4+b.
// Uniform blocks are assigned to their binding points by name when a
// pipeline is created. All calls must be made on the thread that owns the
// GL context.
package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/shader"
	"github.com/Faultbox/meshview/internal/logger"
)

// BindingsPerSlot is the number of uniform binding points reserved per
// bind group slot.
const BindingsPerSlot = 4

// bindingPoint returns the GL uniform buffer binding point for a slot and binding.
func bindingPoint(slot, binding int) uint32 {
	return uint32(slot*BindingsPerSlot + binding)
}

// Surface is the presentable target the device draws into.
type Surface interface {
	// DrawableSize returns the framebuffer size in pixels.
	DrawableSize() (width, height int)
	// Swap presents the back buffer.
	Swap()
}

// Device is an OpenGL gpu.Device.
type Device struct {
	surface Surface
}

var (
	_ gpu.Device      = (*Device)(nil)
	_ gpu.PixelReader = (*Device)(nil)
)

// New loads GL entry points for the current context and sets fixed state.
func New(surface Surface) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	gl.Enable(gl.MULTISAMPLE)
	gl.FrontFace(gl.CCW)
	return &Device{surface: surface}, nil
}

// Size implements gpu.Device.
func (d *Device) Size() (int, int) {
	return d.surface.DrawableSize()
}

type buffer struct {
	id     uint32
	target uint32
	size   int
	vao    uint32
}

func (b *buffer) Size() int { return b.size }

func (b *buffer) Release() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	b := &buffer{target: gl.ARRAY_BUFFER, size: desc.Size}
	if desc.Usage&gpu.BufferUniform != 0 {
		b.target = gl.UNIFORM_BUFFER
	}
	if desc.Contents != nil {
		b.size = len(desc.Contents)
	}

	gl.GenBuffers(1, &b.id)
	if b.id == 0 {
		return nil, fmt.Errorf("create buffer %q: glGenBuffers returned 0", desc.Label)
	}
	gl.BindBuffer(b.target, b.id)
	if len(desc.Contents) > 0 {
		gl.BufferData(b.target, b.size, gl.Ptr(desc.Contents), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(b.target, b.size, nil, gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(b.target, 0)
	return b, nil
}

// WriteBuffer implements gpu.Device.
func (d *Device) WriteBuffer(b gpu.Buffer, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	buf := b.(*buffer)
	gl.BindBuffer(buf.target, buf.id)
	gl.BufferSubData(buf.target, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(buf.target, 0)
}

type layout struct {
	entries []gpu.LayoutEntry
}

func (l *layout) Release() {}

// CreateBindGroupLayout implements gpu.Device.
func (d *Device) CreateBindGroupLayout(desc gpu.BindGroupLayoutDesc) (gpu.BindGroupLayout, error) {
	for _, e := range desc.Entries {
		if e.Binding < 0 || e.Binding >= BindingsPerSlot {
			return nil, fmt.Errorf("layout %q: binding %d out of range [0,%d)", desc.Label, e.Binding, BindingsPerSlot)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("layout %q: binding %d has no block name", desc.Label, e.Binding)
		}
	}
	return &layout{entries: desc.Entries}, nil
}

type bindGroup struct {
	entries []gpu.BindGroupEntry
}

func (g *bindGroup) Release() {}

// CreateBindGroup implements gpu.Device.
func (d *Device) CreateBindGroup(desc gpu.BindGroupDesc) (gpu.BindGroup, error) {
	for _, e := range desc.Entries {
		if _, ok := e.Buffer.(*buffer); !ok {
			return nil, fmt.Errorf("bind group %q: binding %d is not a GL buffer", desc.Label, e.Binding)
		}
	}
	return &bindGroup{entries: desc.Entries}, nil
}

type pipeline struct {
	program uint32
	desc    gpu.PipelineDesc
}

func (p *pipeline) Release() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}

// CreatePipeline implements gpu.Device.
func (d *Device) CreatePipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	program, err := shader.CompileProgram(desc.Label, desc.VertexShader, desc.FragmentShader)
	if err != nil {
		return nil, err
	}

	for slot, l := range desc.Layouts {
		ll, ok := l.(*layout)
		if !ok {
			return nil, fmt.Errorf("pipeline %q: layout %d is not a GL layout", desc.Label, slot)
		}
		for _, e := range ll.entries {
			if !shader.BindUniformBlock(program, e.Name, bindingPoint(slot, e.Binding)) {
				logger.Debug("uniform block inactive",
					zap.String("pipeline", desc.Label),
					zap.String("block", e.Name))
			}
		}
	}
	return &pipeline{program: program, desc: desc}, nil
}

// AcquireFrame implements gpu.Device. It fails with gpu.ErrSurfaceLost
// while the drawable has no area.
func (d *Device) AcquireFrame() (gpu.Frame, error) {
	w, h := d.surface.DrawableSize()
	if w <= 0 || h <= 0 {
		return nil, gpu.ErrSurfaceLost
	}
	return &frame{dev: d}, nil
}

// ReadPixels implements gpu.PixelReader. It reads the front buffer, which
// holds the last presented frame.
func (d *Device) ReadPixels() ([]byte, int, int, error) {
	w, h := d.surface.DrawableSize()
	if w <= 0 || h <= 0 {
		return nil, 0, 0, gpu.ErrSurfaceLost
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadBuffer(gl.FRONT)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return nil, 0, 0, fmt.Errorf("read pixels: GL error 0x%x", code)
	}
	return pixels, w, h, nil
}
