// Package gpu defines the backend-neutral graphics context used by the viewer.
//
// Resources follow the bind-group model: uniform buffers are grouped into
// bind groups described by a layout, and pipelines are built against an
// ordered list of layouts (slot 0, slot 1, ...). Backends decide how slots
// and bindings map onto native binding points.
package gpu

import "errors"

// ErrSurfaceLost is returned by AcquireFrame when no drawable surface is available.
var ErrSurfaceLost = errors.New("gpu: surface lost")

// BufferUsage describes how a buffer is bound.
type BufferUsage uint8

const (
	BufferUniform BufferUsage = 1 << iota
	BufferVertex
)

// BufferDesc describes a buffer. If Contents is nil the buffer is
// zero-initialised with Size bytes; otherwise Size is taken from Contents.
type BufferDesc struct {
	Label    string
	Usage    BufferUsage
	Size     int
	Contents []byte
}

// Buffer is a GPU-visible memory block.
type Buffer interface {
	Size() int
	Release()
}

// ShaderStage is a bitset of pipeline stages.
type ShaderStage uint8

const (
	StageVertex ShaderStage = 1 << iota
	StageFragment
)

// LayoutEntry declares one uniform binding. Name is the uniform block name
// used by backends without explicit binding syntax.
type LayoutEntry struct {
	Binding    int
	Name       string
	Visibility ShaderStage
}

// BindGroupLayoutDesc describes a bind group layout.
type BindGroupLayoutDesc struct {
	Label   string
	Entries []LayoutEntry
}

// BindGroupLayout is the shape of a bind group.
type BindGroupLayout interface {
	Release()
}

// BindGroupEntry binds a buffer at a binding index.
type BindGroupEntry struct {
	Binding int
	Buffer  Buffer
}

// BindGroupDesc describes a bind group.
type BindGroupDesc struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// BindGroup is a set of buffers bound together for draw calls.
type BindGroup interface {
	Release()
}

// CullMode selects which faces are discarded.
type CullMode uint8

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// String implements fmt.Stringer.
func (c CullMode) String() string {
	switch c {
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	default:
		return "none"
	}
}

// CompareFunc is a depth comparison function.
type CompareFunc uint8

const (
	CompareAlways CompareFunc = iota
	CompareLess
	CompareLessEqual
)

// VertexAttribute is one float attribute inside an interleaved vertex.
type VertexAttribute struct {
	Location   int
	Components int
	Offset     int
}

// VertexLayout describes an interleaved float vertex buffer.
type VertexLayout struct {
	Stride     int
	Attributes []VertexAttribute
}

// PipelineDesc describes a render pipeline.
type PipelineDesc struct {
	Label          string
	VertexShader   string
	FragmentShader string
	Layouts        []BindGroupLayout
	Vertex         VertexLayout
	Cull           CullMode
	AlphaBlend     bool
	DepthCompare   CompareFunc
	DepthWrite     bool
}

// Pipeline is a compiled render pipeline.
type Pipeline interface {
	Release()
}

// Color is a linear RGBA clear color.
type Color struct {
	R, G, B, A float64
}

// PassDesc describes a render pass clearing color and depth.
type PassDesc struct {
	ClearColor Color
	ClearDepth float32
}

// Pass records draw commands for one frame.
type Pass interface {
	SetViewport(x, y, width, height float32)
	SetPipeline(p Pipeline)
	SetBindGroup(slot int, g BindGroup)
	SetVertexBuffer(b Buffer)
	Draw(firstVertex, vertexCount int)
	End()
}

// Frame is an acquired presentable target.
type Frame interface {
	BeginPass(desc PassDesc) Pass
	Submit()
	Present()
}

// Device creates resources and acquires frames. Implementations are bound
// to the thread that owns the graphics context.
type Device interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)
	CreateBuffer(desc BufferDesc) (Buffer, error)
	WriteBuffer(b Buffer, offset int, data []byte)
	CreateBindGroupLayout(desc BindGroupLayoutDesc) (BindGroupLayout, error)
	CreateBindGroup(desc BindGroupDesc) (BindGroup, error)
	CreatePipeline(desc PipelineDesc) (Pipeline, error)
	AcquireFrame() (Frame, error)
}

// PixelReader is implemented by devices that can read back the last frame.
type PixelReader interface {
	// ReadPixels returns RGBA bytes with the origin at the bottom-left.
	ReadPixels() (pixels []byte, width, height int, err error)
}
