package meshio

import gomath "math"

// WeldTolerance is the grid size used by Merge to treat points as coincident.
const WeldTolerance = 1e-9

type gridKey struct {
	x, y, z int64
}

func quantize(p [3]float64, tolerance float64) gridKey {
	if tolerance <= 0 {
		tolerance = 1e-12
	}
	scale := 1 / tolerance
	return gridKey{
		x: int64(gomath.Round(p[0] * scale)),
		y: int64(gomath.Round(p[1] * scale)),
		z: int64(gomath.Round(p[2] * scale)),
	}
}

// Weld converts a triangle soup (nine coordinates per triangle) into an
// indexed mesh, sharing points that fall in the same tolerance cell.
func Weld(soup []float64, tolerance float64) Mesh {
	var m Mesh
	index := make(map[gridKey]uint32)
	for i := 0; i+2 < len(soup); i += 3 {
		p := [3]float64{soup[i], soup[i+1], soup[i+2]}
		key := quantize(p, tolerance)
		idx, ok := index[key]
		if !ok {
			idx = uint32(m.VertexCount())
			index[key] = idx
			m.Points = append(m.Points, p[0], p[1], p[2])
		}
		m.Triangles = append(m.Triangles, idx)
	}
	return m
}

// Concat appends parts into one mesh, offsetting indices. Points are not shared.
func Concat(parts ...Mesh) Mesh {
	var out Mesh
	for _, p := range parts {
		base := uint32(out.VertexCount())
		out.Points = append(out.Points, p.Points...)
		for _, idx := range p.Triangles {
			out.Triangles = append(out.Triangles, base+idx)
		}
	}
	return out
}

// Merge concatenates parts, welds coincident points and cleans the result:
// degenerate triangles are dropped, opposing coincident pairs (internal
// faces) are removed together, and remaining duplicates keep their first
// occurrence.
func Merge(parts ...Mesh) Mesh {
	var soup []float64
	for _, p := range parts {
		for _, idx := range p.Triangles {
			pt := p.Point(idx)
			soup = append(soup, pt[0], pt[1], pt[2])
		}
	}
	m := Weld(soup, WeldTolerance)
	m.Triangles = removeDegenerate(m.Points, m.Triangles)
	m.Triangles = removeInternal(m.Triangles)
	m.Triangles = dedupe(m.Triangles)
	return compact(m)
}

func faceKey(a, b, c uint32) [3]uint32 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return [3]uint32{a, b, c}
}

// sameWinding reports whether two triangles over the same corners are
// cyclic rotations of each other.
func sameWinding(t, u [3]uint32) bool {
	for r := range 3 {
		if t[0] == u[r] && t[1] == u[(r+1)%3] && t[2] == u[(r+2)%3] {
			return true
		}
	}
	return false
}

func removeDegenerate(points []float64, tris []uint32) []uint32 {
	const minArea2 = 1e-20
	m := Mesh{Points: points}
	kept := tris[:0:0]
	for i := 0; i+2 < len(tris); i += 3 {
		a, b, c := tris[i], tris[i+1], tris[i+2]
		if a == b || b == c || a == c {
			continue
		}
		p0, p1, p2 := m.Point(a), m.Point(b), m.Point(c)
		e1 := [3]float64{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float64{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		cx := e1[1]*e2[2] - e1[2]*e2[1]
		cy := e1[2]*e2[0] - e1[0]*e2[2]
		cz := e1[0]*e2[1] - e1[1]*e2[0]
		if cx*cx+cy*cy+cz*cz <= minArea2 {
			continue
		}
		kept = append(kept, a, b, c)
	}
	return kept
}

func removeInternal(tris []uint32) []uint32 {
	groups := make(map[[3]uint32][]int)
	for i := 0; i+2 < len(tris); i += 3 {
		key := faceKey(tris[i], tris[i+1], tris[i+2])
		groups[key] = append(groups[key], i/3)
	}

	tri := func(f int) [3]uint32 { return [3]uint32{tris[f*3], tris[f*3+1], tris[f*3+2]} }
	drop := make(map[int]bool)
	for _, faces := range groups {
		for i := range faces {
			if drop[faces[i]] {
				continue
			}
			for j := i + 1; j < len(faces); j++ {
				if drop[faces[j]] || sameWinding(tri(faces[i]), tri(faces[j])) {
					continue
				}
				drop[faces[i]] = true
				drop[faces[j]] = true
				break
			}
		}
	}
	if len(drop) == 0 {
		return tris
	}

	kept := make([]uint32, 0, len(tris)-3*len(drop))
	for f := 0; f*3+2 < len(tris); f++ {
		if !drop[f] {
			kept = append(kept, tris[f*3], tris[f*3+1], tris[f*3+2])
		}
	}
	return kept
}

func dedupe(tris []uint32) []uint32 {
	seen := make(map[[3]uint32]bool)
	kept := tris[:0:0]
	for i := 0; i+2 < len(tris); i += 3 {
		key := faceKey(tris[i], tris[i+1], tris[i+2])
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, tris[i], tris[i+1], tris[i+2])
	}
	return kept
}

// compact drops points no triangle references.
func compact(m Mesh) Mesh {
	remap := make([]int64, m.VertexCount())
	for i := range remap {
		remap[i] = -1
	}
	out := Mesh{Triangles: make([]uint32, len(m.Triangles))}
	for i, idx := range m.Triangles {
		if remap[idx] < 0 {
			remap[idx] = int64(out.VertexCount())
			p := m.Point(idx)
			out.Points = append(out.Points, p[0], p[1], p[2])
		}
		out.Triangles[i] = uint32(remap[idx])
	}
	return out
}
