package obj

import (
	"errors"
	"io"
	"strings"
	"testing"
)

const quadObj = `o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`

const twoObjects = `o First
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
o Second
v 2 0 0
v 3 0 0
v 2 1 0
vn 0 0 -1
f 4//2 5//2 6//2
`

func TestParseTriangulatesQuads(t *testing.T) {
	meshes, err := Parse(strings.NewReader(quadObj), IgnoreMaterials)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}
	m := meshes[0]
	if m.Name != "Quad" {
		t.Errorf("name = %q, want Quad", m.Name)
	}
	if got := len(m.Positions) / 3; got != 4 {
		t.Errorf("got %d vertices, want 4", got)
	}
	if len(m.Indices) != 6 {
		t.Fatalf("got %d indices, want 6", len(m.Indices))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	for i, idx := range m.Indices {
		if idx != want[i] {
			t.Fatalf("indices = %v, want %v", m.Indices, want)
		}
	}
}

func TestParseSharesVerticesAcrossFaces(t *testing.T) {
	meshes, err := Parse(strings.NewReader(quadObj), IgnoreMaterials)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := meshes[0]
	if len(m.Positions) != len(m.Normals) {
		t.Errorf("positions (%d) and normals (%d) out of step", len(m.Positions), len(m.Normals))
	}
	for i := 0; i < len(m.Normals); i += 3 {
		if m.Normals[i] != 0 || m.Normals[i+1] != 0 || m.Normals[i+2] != 1 {
			t.Fatalf("normal %d = %v, want (0,0,1)", i/3, m.Normals[i:i+3])
		}
	}
}

func TestParseSplitsObjects(t *testing.T) {
	meshes, err := Parse(strings.NewReader(twoObjects), IgnoreMaterials)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("got %d meshes, want 2", len(meshes))
	}
	if meshes[0].Name != "First" || meshes[1].Name != "Second" {
		t.Errorf("names = %q, %q", meshes[0].Name, meshes[1].Name)
	}
	// Each object indexes only its own vertices.
	for _, m := range meshes {
		if got := len(m.Positions) / 3; got != 3 {
			t.Errorf("%s: got %d vertices, want 3", m.Name, got)
		}
		for _, idx := range m.Indices {
			if int(idx) >= len(m.Positions)/3 {
				t.Errorf("%s: index %d out of range", m.Name, idx)
			}
		}
	}
}

func TestParseRejectsFacesWithoutNormals(t *testing.T) {
	src := `o Bare
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`
	_, err := Parse(strings.NewReader(src), IgnoreMaterials)
	if err == nil {
		t.Fatal("expected error for faces without normals")
	}
}

func TestParseSurfacesResolverErrors(t *testing.T) {
	src := `mtllib missing.mtl
o Tri
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
usemtl none
f 1//1 2//1 3//1
`
	boom := errors.New("no such library")
	_, err := Parse(strings.NewReader(src), func(lib string) (io.Reader, error) {
		if lib != "missing.mtl" {
			t.Errorf("resolver got %q", lib)
		}
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped resolver error", err)
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile("testdata/does-not-exist.obj", IgnoreMaterials); err == nil {
		t.Fatal("expected error for missing file")
	}
}
