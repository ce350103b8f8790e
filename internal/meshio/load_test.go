package meshio

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func tetra() Mesh {
	return Mesh{
		Points:    []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1},
		Triangles: []uint32{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
	}
}

func TestSupported(t *testing.T) {
	for _, path := range []string{"a.obj", "b.STL", "dir/c.gltf", "d.glb"} {
		if !Supported(path) {
			t.Errorf("Supported(%q) = false", path)
		}
	}
	for _, path := range []string{"a.ply", "noext", "obj"} {
		if Supported(path) {
			t.Errorf("Supported(%q) = true", path)
		}
	}
}

func TestSaveLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetra.obj")
	if err := SaveFile(path, tetra()); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !slices.Equal(m.Points, tetra().Points) || !slices.Equal(m.Triangles, tetra().Triangles) {
		t.Errorf("loaded %+v", m)
	}
}

func TestSaveLoadGLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetra.glb")
	if err := SaveFile(path, tetra()); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if m.VertexCount() != 4 || m.TriangleCount() != 4 {
		t.Fatalf("got %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	}
	if !slices.Equal(m.Triangles, tetra().Triangles) {
		t.Errorf("Triangles = %v", m.Triangles)
	}
	box := m.Bounds()
	if box.Max.X != 1 || box.Max.Y != 1 || box.Max.Z != 1 {
		t.Errorf("Bounds = %+v", box)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "mesh.ply")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ply: err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.obj")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing: err = %v, want ErrNotExist", err)
	}

	bad := filepath.Join(dir, "bad.obj")
	if err := os.WriteFile(bad, []byte("v 0 0 0\nf 1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); !errors.Is(err, ErrMalformed) {
		t.Errorf("bad: err = %v, want ErrMalformed", err)
	}

	if err := SaveFile(filepath.Join(dir, "out.stl"), tetra()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("save stl: err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPrimitive(t *testing.T) {
	for _, name := range Primitives {
		t.Run(name, func(t *testing.T) {
			m, err := Primitive(name, 1)
			if err != nil {
				t.Fatalf("Primitive: %v", err)
			}
			if m.TriangleCount() == 0 {
				t.Fatal("no triangles")
			}
			if err := m.Validate(); err != nil {
				t.Fatal(err)
			}
			box := m.Bounds()
			for _, v := range []float32{box.Max.X, box.Max.Y, box.Max.Z, -box.Min.X, -box.Min.Y, -box.Min.Z} {
				if v < 0.4 || v > 0.55 {
					t.Errorf("bounds %+v not close to a unit solid", box)
					break
				}
			}
		})
	}

	if _, err := Primitive("torus", 1); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("torus: err = %v", err)
	}
	if _, err := Primitive("box", 0); err == nil {
		t.Error("zero size should fail")
	}
}
