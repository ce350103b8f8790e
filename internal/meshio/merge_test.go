package meshio

import (
	"testing"
)

func quad(z float64, flip bool) Mesh {
	m := Mesh{
		Points:    []float64{0, 0, z, 1, 0, z, 1, 1, z, 0, 1, z},
		Triangles: []uint32{0, 1, 2, 0, 2, 3},
	}
	if flip {
		m.Triangles = []uint32{0, 2, 1, 0, 3, 2}
	}
	return m
}

func TestWeld(t *testing.T) {
	soup := []float64{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
		1, 0, 0, 1, 1, 0, 0, 1, 0,
	}
	m := Weld(soup, 1e-9)
	if m.VertexCount() != 4 || m.TriangleCount() != 2 {
		t.Errorf("got %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	}
}

func TestMergeWeldsParts(t *testing.T) {
	a := quad(0, false)
	b := Mesh{
		Points:    []float64{1, 0, 0, 2, 0, 0, 2, 1, 0, 1, 1, 0},
		Triangles: []uint32{0, 1, 2, 0, 2, 3},
	}
	m := Merge(a, b)
	if m.VertexCount() != 6 {
		t.Errorf("VertexCount = %d, want 6 (shared edge welded)", m.VertexCount())
	}
	if m.TriangleCount() != 4 {
		t.Errorf("TriangleCount = %d, want 4", m.TriangleCount())
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
}

func TestMergeRemovesDuplicates(t *testing.T) {
	m := Merge(quad(0, false), quad(0, false))
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", m.TriangleCount())
	}
}

func TestMergeRemovesInternalFaces(t *testing.T) {
	m := Merge(quad(0, false), quad(0, true), quad(1, false))
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2 (opposing pair removed)", m.TriangleCount())
	}
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4 (unreferenced points dropped)", m.VertexCount())
	}
	for i := 2; i < len(m.Points); i += 3 {
		if m.Points[i] != 1 {
			t.Errorf("kept point from the internal quad: %v", m.Points[i-2:i+1])
		}
	}
}

func TestMergeDropsDegenerate(t *testing.T) {
	line := Mesh{
		Points:    []float64{0, 0, 0, 1, 0, 0, 2, 0, 0},
		Triangles: []uint32{0, 1, 2, 0, 0, 1},
	}
	m := Merge(line)
	if m.TriangleCount() != 0 || m.VertexCount() != 0 {
		t.Errorf("got %d triangles, %d vertices", m.TriangleCount(), m.VertexCount())
	}
}

func TestMergeEmpty(t *testing.T) {
	if m := Merge(); m.TriangleCount() != 0 {
		t.Errorf("TriangleCount = %d", m.TriangleCount())
	}
}

func TestConcat(t *testing.T) {
	m := Concat(quad(0, false), quad(1, false))
	if m.VertexCount() != 8 || m.TriangleCount() != 4 {
		t.Fatalf("got %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	}
	if m.Triangles[6] != 4 {
		t.Errorf("second part not offset: %v", m.Triangles)
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
}
