// Package stl reads binary STL files into the flat mesh records the model
// builder consumes. STL triangles share no vertices, so every triangle emits
// three vertices carrying the triangle's normal and three sequential indices.
package stl

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/FrozenDroid/frozengame/internal/logger"
	"github.com/FrozenDroid/frozengame/model"
)

const (
	headerSize     = 80
	triangleStride = 50
)

// Source adapts Parse to the builder's ParseFunc shape.
func Source() model.ParseFunc {
	return Parse
}

// Parse reads one binary STL stream and returns it as a single source mesh
// named after the file header. Solids with zero triangles parse to an empty
// mesh.
func Parse(r io.Reader) ([]model.SourceMesh, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading stl stream: %w", err)
	}
	if len(b) < headerSize+4 {
		return nil, fmt.Errorf("stl stream too short: %d bytes", len(b))
	}
	header := b[:headerSize]
	tCnt := binary.LittleEndian.Uint32(b[headerSize : headerSize+4])
	body := b[headerSize+4:]
	if want := int(tCnt) * triangleStride; len(body) < want {
		return nil, fmt.Errorf("stl stream truncated: header promises %d triangles (%d bytes), got %d", tCnt, want, len(body))
	}

	m := toMesh(body, tCnt)
	m.Name = headerName(header)
	logger.Debug("parsed stl solid",
		zap.String("name", m.Name),
		zap.Uint32("triangles", tCnt),
		zap.Int("kib", len(body)/1024),
	)
	return []model.SourceMesh{m}, nil
}

// ParseFile opens path and parses it.
func ParseFile(path string) ([]model.SourceMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stl file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func toMesh(body []byte, triangleCnt uint32) model.SourceMesh {
	m := model.SourceMesh{
		Positions: make([]float32, 0, triangleCnt*9),
		Normals:   make([]float32, 0, triangleCnt*9),
		Indices:   make([]uint32, 0, triangleCnt*3),
	}
	for t := uint32(0); t < triangleCnt; t++ {
		rec := body[t*triangleStride:]
		nx, ny, nz := toFloat32(rec[0:4]), toFloat32(rec[4:8]), toFloat32(rec[8:12])
		for c := 0; c < 3; c++ {
			off := 12 + c*12
			m.Positions = append(m.Positions, toFloat32(rec[off:off+4]), toFloat32(rec[off+4:off+8]), toFloat32(rec[off+8:off+12]))
			m.Normals = append(m.Normals, nx, ny, nz)
			m.Indices = append(m.Indices, uint32(len(m.Indices)))
		}
		// Two trailing attribute bytes per triangle are ignored.
	}
	return m
}

// headerName extracts a printable name from the 80 byte header, if any.
func headerName(header []byte) string {
	s := strings.TrimRight(string(header), "\x00 ")
	if !isPrintable(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			return false
		}
	}
	return true
}

func toFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
