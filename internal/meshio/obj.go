package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadOBJ parses vertex positions and faces from Wavefront OBJ text.
// Faces accept v, v/vt, v//vn and v/vt/vn forms with 1-based or negative
// relative indices; polygons are fan-triangulated. Other statements are
// ignored.
func ReadOBJ(r io.Reader) (Mesh, error) {
	var m Mesh
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return Mesh{}, fmt.Errorf("%w: line %d: vertex needs x y z", ErrMalformed, lineNum)
			}
			for _, f := range fields[1:4] {
				val, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return Mesh{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNum, err)
				}
				m.Points = append(m.Points, val)
			}

		case "f":
			if len(fields) < 4 {
				return Mesh{}, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrMalformed, lineNum)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, f := range fields[1:] {
				idx, err := parseFaceIndex(f, m.VertexCount())
				if err != nil {
					return Mesh{}, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNum, err)
				}
				face = append(face, idx)
			}
			for i := 1; i+1 < len(face); i++ {
				m.Triangles = append(m.Triangles, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Mesh{}, fmt.Errorf("read obj: %w", err)
	}
	return m, nil
}

// parseFaceIndex resolves the position part of a face vertex to a
// zero-based index given the number of vertices read so far.
func parseFaceIndex(field string, count int) (uint32, error) {
	pos, _, _ := strings.Cut(field, "/")
	val, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("face index %q: %w", field, err)
	}
	switch {
	case val > 0 && val <= count:
		return uint32(val - 1), nil
	case val < 0 && -val <= count:
		return uint32(count + val), nil
	default:
		return 0, fmt.Errorf("face index %d out of range (%d vertices)", val, count)
	}
}

// WriteOBJ writes "v x y z" lines followed by 1-based "f i j k" lines.
func WriteOBJ(w io.Writer, m Mesh) error {
	bw := bufio.NewWriter(w)
	for i := 0; i+2 < len(m.Points); i += 3 {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(m.Points[i]), formatFloat(m.Points[i+1]), formatFloat(m.Points[i+2]))
	}
	for i := 0; i+2 < len(m.Triangles); i += 3 {
		fmt.Fprintf(bw, "f %d %d %d\n", m.Triangles[i]+1, m.Triangles[i+1]+1, m.Triangles[i+2]+1)
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
