package stl

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

// createTestSolid builds a binary STL body with the given header text and
// triangles. Each triangle is a normal followed by three corners.
func createTestSolid(header string, triangles ...[12]float32) []byte {
	var buf bytes.Buffer
	h := make([]byte, 80)
	copy(h, header)
	buf.Write(h)
	binary.Write(&buf, binary.LittleEndian, uint32(len(triangles)))
	for _, tri := range triangles {
		for _, f := range tri {
			binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
		}
		buf.Write([]byte{0, 0})
	}
	return buf.Bytes()
}

func TestParseTriangles(t *testing.T) {
	data := createTestSolid("part",
		[12]float32{0, 0, 1 /* normal */, 0, 0, 0, 1, 0, 0, 0, 1, 0},
		[12]float32{0, 1, 0, 1, 1, 1, 2, 1, 1, 1, 2, 1},
	)
	meshes, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}
	m := meshes[0]
	if m.Name != "part" {
		t.Errorf("name = %q, want part", m.Name)
	}
	if got := len(m.Positions) / 3; got != 6 {
		t.Fatalf("got %d vertices, want 6", got)
	}
	for i, idx := range m.Indices {
		if int(idx) != i {
			t.Fatalf("indices = %v, want sequential", m.Indices)
		}
	}
	// Every corner of the first triangle carries its face normal.
	for c := 0; c < 3; c++ {
		if m.Normals[c*3] != 0 || m.Normals[c*3+1] != 0 || m.Normals[c*3+2] != 1 {
			t.Fatalf("corner %d normal = %v, want (0,0,1)", c, m.Normals[c*3:c*3+3])
		}
	}
	if m.Positions[3] != 1 || m.Positions[4] != 0 || m.Positions[5] != 0 {
		t.Errorf("second corner = %v, want (1,0,0)", m.Positions[3:6])
	}
}

func TestParseEmptySolid(t *testing.T) {
	meshes, err := Parse(bytes.NewReader(createTestSolid("empty")))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(meshes) != 1 || len(meshes[0].Indices) != 0 {
		t.Fatalf("got %+v, want one empty mesh", meshes)
	}
}

func TestParseTruncated(t *testing.T) {
	data := createTestSolid("bad", [12]float32{})
	if _, err := Parse(bytes.NewReader(data[:len(data)-10])); err == nil {
		t.Fatal("expected error for truncated body")
	}
	if _, err := Parse(strings.NewReader("short")); err == nil {
		t.Fatal("expected error for stream shorter than a header")
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile("testdata/does-not-exist.stl"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
