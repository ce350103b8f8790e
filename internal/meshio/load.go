package meshio

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ReadExtensions lists the file extensions LoadFile understands.
var ReadExtensions = []string{".obj", ".stl", ".gltf", ".glb"}

// Supported reports whether LoadFile can read path.
func Supported(path string) bool {
	return slices.Contains(ReadExtensions, strings.ToLower(filepath.Ext(path)))
}

// LoadFile reads a mesh, choosing the format by extension, and validates it.
func LoadFile(path string) (Mesh, error) {
	var (
		m   Mesh
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
		m, err = ReadGLTF(path)
	case ".obj", ".stl":
		f, openErr := os.Open(path)
		if openErr != nil {
			return Mesh{}, openErr
		}
		defer f.Close()
		if ext == ".obj" {
			m, err = ReadOBJ(f)
		} else {
			m, err = ReadSTL(f)
		}
	default:
		return Mesh{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Mesh{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return Mesh{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// SaveFile writes m as .obj or .glb depending on the extension.
func SaveFile(path string, m Mesh) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteOBJ(f, m); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", path, err)
		}
		return f.Close()
	case ".glb":
		return WriteGLB(path, m)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
