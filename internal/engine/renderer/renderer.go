// Package renderer implements the shared camera and projection stage: it
// owns the camera uniforms and the two pipeline variants, keeps per-mesh
// GPU resources in sync, and submits draws.
package renderer

import (
	"encoding/binary"
	"fmt"
	"iter"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/engine/shaders"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/math"
)

// CameraSlot is the bind group slot of the shared camera group.
const CameraSlot = 0

// Camera group bindings.
const (
	BindingView = iota
	BindingProjection
	BindingLight
	BindingNormalMatrix
)

// State tracks lazy creation of the shared GPU resources.
type State uint8

const (
	StateUninitialized State = iota
	StateCameraReady
	StatePipelinesReady
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateCameraReady:
		return "camera-ready"
	case StatePipelinesReady:
		return "pipelines-ready"
	default:
		return "uninitialized"
	}
}

type cameraResources struct {
	layout gpu.BindGroupLayout
	view   gpu.Buffer
	proj   gpu.Buffer
	light  gpu.Buffer
	normal gpu.Buffer
	group  gpu.BindGroup
}

type pipelineResources struct {
	materialLayout gpu.BindGroupLayout
	cullBack       gpu.Pipeline
	cullFront      gpu.Pipeline
}

// Core renders a set of mesh resources through one camera.
type Core struct {
	cam   *camera.Camera
	light math.Vec3

	state     State
	camRes    *cameraResources
	pipelines *pipelineResources

	bounds math.AABB
	aspect float32
}

// New creates a core for cam with a fixed point light in view space.
func New(cam *camera.Camera, light math.Vec3) *Core {
	return &Core{
		cam:    cam,
		light:  light,
		bounds: math.EmptyAABB(),
	}
}

// Camera returns the camera driven by this core.
func (c *Core) Camera() *camera.Camera { return c.cam }

// Bounds returns the union box computed by the last refresh.
func (c *Core) Bounds() math.AABB { return c.bounds }

// State returns how far shared resource creation has progressed.
func (c *Core) State() State { return c.state }

// Render syncs and draws meshes into pass. Resources of visible meshes are
// created on first use; pending vertex and material uploads are flushed.
// The union box over all meshes is recomputed when refreshBox is set or a
// vertex upload happened, and matrices are rewritten when refreshMatrix is
// set, vertices changed, or the drawable aspect ratio changed.
func (c *Core) Render(dev gpu.Device, pass gpu.Pass, meshes iter.Seq[*mesh.Resource], refreshBox, refreshMatrix bool) error {
	if err := c.initCamera(dev); err != nil {
		return err
	}
	if err := c.initPipelines(dev); err != nil {
		return err
	}

	vertexChanged := false
	for m := range meshes {
		if !m.Visible() {
			continue
		}
		if !m.Initialized() {
			if err := m.Init(dev, c.pipelines.materialLayout); err != nil {
				return fmt.Errorf("init %s: %w", m.Label(), err)
			}
			logger.Debug("mesh resources created",
				zap.String("mesh", m.Label()),
				zap.Int("vertices", m.VertexCount()))
		}
		if m.Dirty().Has(mesh.DirtyVertex) {
			if err := m.UpdateVertexBuffer(dev); err != nil {
				return fmt.Errorf("upload %s: %w", m.Label(), err)
			}
			vertexChanged = true
		}
		if m.Dirty().Has(mesh.DirtyMaterial) {
			m.UpdateMaterial(dev)
		}
	}

	if refreshBox || vertexChanged {
		box := math.EmptyAABB()
		for m := range meshes {
			box = box.Merge(m.Bounds())
		}
		c.bounds = box
		c.cam.Frame(box)
	}

	w, h := dev.Size()
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	if refreshMatrix || vertexChanged || aspect != c.aspect {
		c.aspect = aspect
		c.updateMatrices(dev)
	}

	pass.SetViewport(0, 0, float32(w), float32(h))
	pass.SetBindGroup(CameraSlot, c.camRes.group)
	for m := range meshes {
		if m.Visible() {
			m.Render(pass, c.pipelines.cullBack, c.pipelines.cullFront)
		}
	}
	return nil
}

func (c *Core) updateMatrices(dev gpu.Device) {
	view := c.cam.View()
	normal := camera.NormalMatrix(view)
	proj := c.cam.Projection(c.aspect)

	dev.WriteBuffer(c.camRes.view, 0, view.Bytes())
	dev.WriteBuffer(c.camRes.proj, 0, proj.Bytes())
	dev.WriteBuffer(c.camRes.normal, 0, normal.Bytes())
}

func (c *Core) initCamera(dev gpu.Device) error {
	if c.state >= StateCameraReady {
		return nil
	}

	layout, err := dev.CreateBindGroupLayout(gpu.BindGroupLayoutDesc{
		Label: "camera",
		Entries: []gpu.LayoutEntry{
			{Binding: BindingView, Name: shaders.BlockView, Visibility: gpu.StageVertex},
			{Binding: BindingProjection, Name: shaders.BlockProjection, Visibility: gpu.StageVertex},
			{Binding: BindingLight, Name: shaders.BlockLight, Visibility: gpu.StageFragment},
			{Binding: BindingNormalMatrix, Name: shaders.BlockNormalMatrix, Visibility: gpu.StageVertex},
		},
	})
	if err != nil {
		return fmt.Errorf("camera layout: %w", err)
	}

	res := &cameraResources{layout: layout}
	identity := math.Identity()
	for _, b := range []struct {
		dst      *gpu.Buffer
		label    string
		contents []byte
	}{
		{&res.view, "view", identity.Bytes()},
		{&res.proj, "projection", identity.Bytes()},
		{&res.light, "light", vec4Bytes(c.light, 1)},
		{&res.normal, "normal matrix", identity.Bytes()},
	} {
		buf, err := dev.CreateBuffer(gpu.BufferDesc{
			Label:    b.label,
			Usage:    gpu.BufferUniform,
			Contents: append([]byte(nil), b.contents...),
		})
		if err != nil {
			res.release()
			return fmt.Errorf("%s buffer: %w", b.label, err)
		}
		*b.dst = buf
	}

	res.group, err = dev.CreateBindGroup(gpu.BindGroupDesc{
		Label:  "camera",
		Layout: layout,
		Entries: []gpu.BindGroupEntry{
			{Binding: BindingView, Buffer: res.view},
			{Binding: BindingProjection, Buffer: res.proj},
			{Binding: BindingLight, Buffer: res.light},
			{Binding: BindingNormalMatrix, Buffer: res.normal},
		},
	})
	if err != nil {
		res.release()
		return fmt.Errorf("camera bind group: %w", err)
	}

	c.camRes = res
	c.state = StateCameraReady
	logger.Debug("camera resources created")
	return nil
}

func (c *Core) initPipelines(dev gpu.Device) error {
	if c.state >= StatePipelinesReady {
		return nil
	}

	matLayout, err := dev.CreateBindGroupLayout(gpu.BindGroupLayoutDesc{
		Label: "material",
		Entries: []gpu.LayoutEntry{
			{Binding: 0, Name: shaders.BlockMaterial, Visibility: gpu.StageFragment},
		},
	})
	if err != nil {
		return fmt.Errorf("material layout: %w", err)
	}

	desc := gpu.PipelineDesc{
		Label:          "mesh cull-back",
		VertexShader:   shaders.MeshVertexShader,
		FragmentShader: shaders.MeshFragmentShader,
		Layouts:        []gpu.BindGroupLayout{c.camRes.layout, matLayout},
		Vertex:         mesh.VertexLayout(),
		Cull:           gpu.CullBack,
		AlphaBlend:     true,
		DepthCompare:   gpu.CompareLess,
		DepthWrite:     true,
	}
	back, err := dev.CreatePipeline(desc)
	if err != nil {
		matLayout.Release()
		return fmt.Errorf("cull-back pipeline: %w", err)
	}

	desc.Label = "mesh cull-front"
	desc.Cull = gpu.CullFront
	front, err := dev.CreatePipeline(desc)
	if err != nil {
		back.Release()
		matLayout.Release()
		return fmt.Errorf("cull-front pipeline: %w", err)
	}

	c.pipelines = &pipelineResources{materialLayout: matLayout, cullBack: back, cullFront: front}
	c.state = StatePipelinesReady
	logger.Debug("pipelines created")
	return nil
}

// Close releases the shared resources. Mesh resources are owned by their
// entries and released separately.
func (c *Core) Close() {
	if c.pipelines != nil {
		c.pipelines.cullFront.Release()
		c.pipelines.cullBack.Release()
		c.pipelines.materialLayout.Release()
		c.pipelines = nil
	}
	if c.camRes != nil {
		c.camRes.release()
		c.camRes = nil
	}
	c.state = StateUninitialized
}

func (r *cameraResources) release() {
	if r.group != nil {
		r.group.Release()
	}
	for _, b := range []gpu.Buffer{r.view, r.proj, r.light, r.normal} {
		if b != nil {
			b.Release()
		}
	}
	r.layout.Release()
}

func vec4Bytes(v math.Vec3, w float32) []byte {
	out := make([]byte, 16)
	for i, f := range [4]float32{v.X, v.Y, v.Z, w} {
		binary.NativeEndian.PutUint32(out[i*4:], gomath.Float32bits(f))
	}
	return out
}
