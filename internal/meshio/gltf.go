package meshio

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshview/pkg/math"
)

// ReadGLTF loads a .gltf or .glb file and flattens the triangle primitives
// of its default scene into one mesh, applying node transforms.
func ReadGLTF(path string) (Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return Mesh{}, fmt.Errorf("open gltf: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc *gltf.Document) (Mesh, error) {
	var m Mesh
	if len(doc.Scenes) == 0 {
		for _, root := range rootNodes(doc) {
			if err := appendNode(doc, root, math.Identity(), &m); err != nil {
				return Mesh{}, err
			}
		}
		return m, nil
	}

	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = int(*doc.Scene)
	}
	for _, nodeIdx := range doc.Scenes[sceneIdx].Nodes {
		if err := appendNode(doc, int(nodeIdx), math.Identity(), &m); err != nil {
			return Mesh{}, err
		}
	}
	return m, nil
}

func rootNodes(doc *gltf.Document) []int {
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[int(c)] = true
		}
	}
	var roots []int
	for i, isChild := range child {
		if !isChild {
			roots = append(roots, i)
		}
	}
	return roots
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// localTransform returns the node matrix, or T·R·S when no matrix is set.
func localTransform(node *gltf.Node) math.Mat4 {
	if node.Matrix != identityMatrix && node.Matrix != ([16]float64{}) {
		var out math.Mat4
		for i, v := range node.Matrix {
			out[i] = float32(v)
		}
		return out
	}

	local := math.Translate(float32(node.Translation[0]), float32(node.Translation[1]), float32(node.Translation[2]))
	if r := node.Rotation; r != ([4]float64{}) {
		q := math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
		local = local.Mul(q.ToMat4())
	}
	if s := node.Scale; s != ([3]float64{}) {
		local = local.Mul(math.Scale(float32(s[0]), float32(s[1]), float32(s[2])))
	}
	return local
}

func appendNode(doc *gltf.Document, nodeIdx int, parent math.Mat4, m *Mesh) error {
	node := doc.Nodes[nodeIdx]
	world := parent.Mul(localTransform(node))

	if node.Mesh != nil {
		if err := appendMesh(doc, doc.Meshes[int(*node.Mesh)], world, m); err != nil {
			return fmt.Errorf("node %d: %w", nodeIdx, err)
		}
	}
	for _, c := range node.Children {
		if err := appendNode(doc, int(c), world, m); err != nil {
			return err
		}
	}
	return nil
}

func appendMesh(doc *gltf.Document, gm *gltf.Mesh, world math.Mat4, m *Mesh) error {
	for _, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[int(posIdx)], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		base := uint32(m.VertexCount())
		for _, p := range positions {
			wp := world.TransformPoint(p)
			m.Points = append(m.Points, float64(wp[0]), float64(wp[1]), float64(wp[2]))
		}

		if prim.Indices == nil {
			for i := 0; i+2 < len(positions); i += 3 {
				m.Triangles = append(m.Triangles, base+uint32(i), base+uint32(i+1), base+uint32(i+2))
			}
			continue
		}

		indices, err := modeler.ReadIndices(doc, doc.Accessors[int(*prim.Indices)], nil)
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			for _, idx := range indices[i : i+3] {
				if int(idx) >= len(positions) {
					return fmt.Errorf("%w: index %d out of range (%d positions)", ErrMalformed, idx, len(positions))
				}
				m.Triangles = append(m.Triangles, base+idx)
			}
		}
	}
	return nil
}

// WriteGLB saves m as a binary glTF with a single mesh node.
func WriteGLB(path string, m Mesh) error {
	positions := make([][3]float32, m.VertexCount())
	for i := range positions {
		p := m.Point(uint32(i))
		positions[i] = [3]float32{float32(p[0]), float32(p[1]), float32(p[2])}
	}

	doc := gltf.NewDocument()
	posAcc := modeler.WritePosition(doc, positions)
	idxAcc := modeler.WriteIndices(doc, m.Triangles)
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "mesh",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idxAcc),
			Attributes: map[string]int{gltf.POSITION: posAcc},
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "mesh", Mesh: gltf.Index(0)})
	if len(doc.Scenes) == 0 {
		doc.Scenes = append(doc.Scenes, &gltf.Scene{})
		doc.Scene = gltf.Index(0)
	}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}
