package glgpu

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshview/internal/engine/gpu"
)

type frame struct {
	dev *Device
}

func (f *frame) BeginPass(desc gpu.PassDesc) gpu.Pass {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	c := desc.ClearColor
	gl.ClearColor(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	gl.ClearDepth(float64(desc.ClearDepth))
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return &pass{}
}

func (f *frame) Submit() {
	gl.Flush()
}

func (f *frame) Present() {
	f.dev.surface.Swap()
}

type pass struct {
	pipeline *pipeline
	vertex   *buffer
}

func (p *pass) SetViewport(x, y, width, height float32) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (p *pass) SetPipeline(pl gpu.Pipeline) {
	p.pipeline = pl.(*pipeline)
	desc := p.pipeline.desc
	gl.UseProgram(p.pipeline.program)

	switch desc.Cull {
	case gpu.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Disable(gl.CULL_FACE)
	}

	if desc.AlphaBlend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}

	gl.Enable(gl.DEPTH_TEST)
	switch desc.DepthCompare {
	case gpu.CompareLess:
		gl.DepthFunc(gl.LESS)
	case gpu.CompareLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	default:
		gl.DepthFunc(gl.ALWAYS)
	}
	gl.DepthMask(desc.DepthWrite)
}

func (p *pass) SetBindGroup(slot int, g gpu.BindGroup) {
	for _, e := range g.(*bindGroup).entries {
		buf := e.Buffer.(*buffer)
		gl.BindBufferBase(gl.UNIFORM_BUFFER, bindingPoint(slot, e.Binding), buf.id)
	}
}

func (p *pass) SetVertexBuffer(b gpu.Buffer) {
	p.vertex = b.(*buffer)
}

// Draw binds the vertex buffer's VAO, building it from the current
// pipeline's vertex layout on first use.
func (p *pass) Draw(firstVertex, vertexCount int) {
	if p.pipeline == nil || p.vertex == nil || vertexCount == 0 {
		return
	}
	if p.vertex.vao == 0 {
		buildVAO(p.vertex, p.pipeline.desc.Vertex)
	}
	gl.BindVertexArray(p.vertex.vao)
	gl.DrawArrays(gl.TRIANGLES, int32(firstVertex), int32(vertexCount))
}

func (p *pass) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.DepthMask(true)
}

func buildVAO(b *buffer, layout gpu.VertexLayout) {
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	for _, a := range layout.Attributes {
		loc := uint32(a.Location)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, int32(a.Components), gl.FLOAT, false, int32(layout.Stride), uintptr(a.Offset))
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}
