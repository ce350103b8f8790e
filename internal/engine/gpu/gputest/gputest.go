// Package gputest provides an in-memory gpu.Device that records every
// resource and command for assertions in tests.
package gputest

import (
	"fmt"

	"github.com/Faultbox/meshview/internal/engine/gpu"
)

// Buffer is a recorded buffer.
type Buffer struct {
	ID       int
	Label    string
	Usage    gpu.BufferUsage
	Data     []byte
	Writes   int
	Released bool
}

// Size implements gpu.Buffer.
func (b *Buffer) Size() int { return len(b.Data) }

// Release implements gpu.Buffer.
func (b *Buffer) Release() { b.Released = true }

// Layout is a recorded bind group layout.
type Layout struct {
	Desc     gpu.BindGroupLayoutDesc
	Released bool
}

// Release implements gpu.BindGroupLayout.
func (l *Layout) Release() { l.Released = true }

// BindGroup is a recorded bind group.
type BindGroup struct {
	Desc     gpu.BindGroupDesc
	Released bool
}

// Release implements gpu.BindGroup.
func (g *BindGroup) Release() { g.Released = true }

// Buffer returns the buffer bound at binding, or nil.
func (g *BindGroup) Buffer(binding int) *Buffer {
	for _, e := range g.Desc.Entries {
		if e.Binding == binding {
			b, _ := e.Buffer.(*Buffer)
			return b
		}
	}
	return nil
}

// Pipeline is a recorded pipeline.
type Pipeline struct {
	Desc     gpu.PipelineDesc
	Released bool
}

// Release implements gpu.Pipeline.
func (p *Pipeline) Release() { p.Released = true }

// Draw is one recorded draw call together with the state bound at the time.
type Draw struct {
	Pipeline     *Pipeline
	VertexBuffer *Buffer
	BindGroups   map[int]*BindGroup
	FirstVertex  int
	VertexCount  int
}

// Device is a recording gpu.Device.
type Device struct {
	Width, Height int

	// AcquireErr, when set, is returned by AcquireFrame.
	AcquireErr error

	Buffers    []*Buffer
	Layouts    []*Layout
	BindGroups []*BindGroup
	Pipelines  []*Pipeline
	Draws      []Draw

	FramesAcquired  int
	FramesSubmitted int
	FramesPresented int
	PassesBegun     int
	LastPass        gpu.PassDesc

	nextID int
}

var _ gpu.Device = (*Device)(nil)

// NewDevice creates a recording device with the given drawable size.
func NewDevice(width, height int) *Device {
	return &Device{Width: width, Height: height}
}

// Size implements gpu.Device.
func (d *Device) Size() (int, int) { return d.Width, d.Height }

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer(desc gpu.BufferDesc) (gpu.Buffer, error) {
	d.nextID++
	data := make([]byte, desc.Size)
	if desc.Contents != nil {
		data = append([]byte(nil), desc.Contents...)
	}
	b := &Buffer{ID: d.nextID, Label: desc.Label, Usage: desc.Usage, Data: data}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

// WriteBuffer implements gpu.Device.
func (d *Device) WriteBuffer(b gpu.Buffer, offset int, data []byte) {
	buf := b.(*Buffer)
	if offset+len(data) > len(buf.Data) {
		panic(fmt.Sprintf("gputest: write of %d bytes at %d overflows %q (%d bytes)",
			len(data), offset, buf.Label, len(buf.Data)))
	}
	copy(buf.Data[offset:], data)
	buf.Writes++
}

// CreateBindGroupLayout implements gpu.Device.
func (d *Device) CreateBindGroupLayout(desc gpu.BindGroupLayoutDesc) (gpu.BindGroupLayout, error) {
	l := &Layout{Desc: desc}
	d.Layouts = append(d.Layouts, l)
	return l, nil
}

// CreateBindGroup implements gpu.Device.
func (d *Device) CreateBindGroup(desc gpu.BindGroupDesc) (gpu.BindGroup, error) {
	g := &BindGroup{Desc: desc}
	d.BindGroups = append(d.BindGroups, g)
	return g, nil
}

// CreatePipeline implements gpu.Device.
func (d *Device) CreatePipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	p := &Pipeline{Desc: desc}
	d.Pipelines = append(d.Pipelines, p)
	return p, nil
}

// AcquireFrame implements gpu.Device.
func (d *Device) AcquireFrame() (gpu.Frame, error) {
	if d.AcquireErr != nil {
		return nil, d.AcquireErr
	}
	d.FramesAcquired++
	return &frame{dev: d}, nil
}

// BuffersWithUsage returns every buffer created with the given usage.
func (d *Device) BuffersWithUsage(usage gpu.BufferUsage) []*Buffer {
	var out []*Buffer
	for _, b := range d.Buffers {
		if b.Usage&usage != 0 {
			out = append(out, b)
		}
	}
	return out
}

// Writes sums WriteBuffer calls over buffers with the given usage.
func (d *Device) Writes(usage gpu.BufferUsage) int {
	n := 0
	for _, b := range d.BuffersWithUsage(usage) {
		n += b.Writes
	}
	return n
}

// DrawsFor returns the draw calls that used vertex buffer b.
func (d *Device) DrawsFor(b *Buffer) []Draw {
	var out []Draw
	for _, dr := range d.Draws {
		if dr.VertexBuffer == b {
			out = append(out, dr)
		}
	}
	return out
}

// ResetCommands clears recorded draws and frame counters, keeping resources.
func (d *Device) ResetCommands() {
	d.Draws = nil
	d.FramesAcquired = 0
	d.FramesSubmitted = 0
	d.FramesPresented = 0
	d.PassesBegun = 0
	for _, b := range d.Buffers {
		b.Writes = 0
	}
}

type frame struct {
	dev *Device
}

func (f *frame) BeginPass(desc gpu.PassDesc) gpu.Pass {
	f.dev.PassesBegun++
	f.dev.LastPass = desc
	return &pass{dev: f.dev, groups: map[int]*BindGroup{}}
}

func (f *frame) Submit()  { f.dev.FramesSubmitted++ }
func (f *frame) Present() { f.dev.FramesPresented++ }

type pass struct {
	dev      *Device
	pipeline *Pipeline
	vertex   *Buffer
	groups   map[int]*BindGroup
	ended    bool
}

func (p *pass) SetViewport(x, y, width, height float32) {}

func (p *pass) SetPipeline(pl gpu.Pipeline) { p.pipeline = pl.(*Pipeline) }

func (p *pass) SetBindGroup(slot int, g gpu.BindGroup) { p.groups[slot] = g.(*BindGroup) }

func (p *pass) SetVertexBuffer(b gpu.Buffer) { p.vertex = b.(*Buffer) }

func (p *pass) Draw(firstVertex, vertexCount int) {
	if p.ended {
		panic("gputest: draw after End")
	}
	groups := make(map[int]*BindGroup, len(p.groups))
	for k, v := range p.groups {
		groups[k] = v
	}
	p.dev.Draws = append(p.dev.Draws, Draw{
		Pipeline:     p.pipeline,
		VertexBuffer: p.vertex,
		BindGroups:   groups,
		FirstVertex:  firstVertex,
		VertexCount:  vertexCount,
	})
}

func (p *pass) End() { p.ended = true }
