// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// Uniform block names shared by the mesh shaders.
const (
	BlockView         = "View"
	BlockProjection   = "Projection"
	BlockLight        = "Light"
	BlockNormalMatrix = "NormalMatrix"
	BlockMaterial     = "Material"
)

// MeshVertexShader is the vertex shader for flat-shaded meshes.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader is the fragment shader for flat-shaded meshes with
// the barycentric edge overlay.
//
//go:embed mesh.frag
var MeshFragmentShader string
