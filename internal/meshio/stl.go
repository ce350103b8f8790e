package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	gomath "math"
	"strconv"
	"strings"
)

// ReadSTL parses binary or ASCII STL. Coincident corners are welded.
func ReadSTL(r io.Reader) (Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Mesh{}, fmt.Errorf("read stl: %w", err)
	}
	var soup []float64
	if isBinarySTL(data) {
		soup, err = readBinarySTL(data)
	} else {
		soup, err = readASCIISTL(data)
	}
	if err != nil {
		return Mesh{}, err
	}
	return Weld(soup, 0), nil
}

// isBinarySTL reports whether data is binary: anything not starting with
// "solid", or a "solid" header whose triangle count matches the file size.
func isBinarySTL(data []byte) bool {
	if len(data) < 84 {
		return false
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return true
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	return uint64(len(data)) == 84+uint64(count)*50
}

func readBinarySTL(data []byte) ([]float64, error) {
	count := binary.LittleEndian.Uint32(data[80:84])
	if need := 84 + uint64(count)*50; uint64(len(data)) < need {
		return nil, fmt.Errorf("%w: binary stl truncated: need %d bytes, have %d", ErrMalformed, need, len(data))
	}

	soup := make([]float64, 0, int(count)*9)
	offset := 84
	for range count {
		offset += 12 // facet normal
		for range 9 {
			bits := binary.LittleEndian.Uint32(data[offset:])
			soup = append(soup, float64(gomath.Float32frombits(bits)))
			offset += 4
		}
		offset += 2 // attribute byte count
	}
	return soup, nil
}

func readASCIISTL(data []byte) ([]float64, error) {
	var soup, facet []float64
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "facet":
			facet = facet[:0]
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs x y z", ErrMalformed, lineNum)
			}
			for _, f := range fields[1:4] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNum, err)
				}
				facet = append(facet, v)
			}
		case "endfacet":
			if len(facet) != 9 {
				return nil, fmt.Errorf("%w: line %d: facet has %d vertices", ErrMalformed, lineNum, len(facet)/3)
			}
			soup = append(soup, facet...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}
	return soup, nil
}
