package model

import "testing"

func TestConvertMesh(t *testing.T) {
	src := SourceMesh{
		Name:      "tri",
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
	}

	m, err := ConvertMesh(src)
	if err != nil {
		t.Fatalf("ConvertMesh failed: %v", err)
	}
	if len(m.Vertices) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(m.Vertices))
	}
	for k := range m.Vertices {
		wantPos := [3]float32{src.Positions[k*3], src.Positions[k*3+1], src.Positions[k*3+2]}
		wantNrm := [3]float32{src.Normals[k*3], src.Normals[k*3+1], src.Normals[k*3+2]}
		if m.Vertices[k].Pos != wantPos {
			t.Errorf("vertex %d position = %v, want %v", k, m.Vertices[k].Pos, wantPos)
		}
		if m.Vertices[k].Normal != wantNrm {
			t.Errorf("vertex %d normal = %v, want %v", k, m.Vertices[k].Normal, wantNrm)
		}
	}
}

func TestConvertMeshCopiesIndicesUnchanged(t *testing.T) {
	src := SourceMesh{
		Positions: make([]float32, 12),
		Normals:   make([]float32, 12),
		Indices:   []uint32{0, 1, 2, 2, 3, 0},
	}

	m, err := ConvertMesh(src)
	if err != nil {
		t.Fatalf("ConvertMesh failed: %v", err)
	}
	if len(m.Indices) != len(src.Indices) {
		t.Fatalf("expected %d indices, got %d", len(src.Indices), len(m.Indices))
	}
	for k := range src.Indices {
		if m.Indices[k] != src.Indices[k] {
			t.Errorf("index %d = %d, want %d", k, m.Indices[k], src.Indices[k])
		}
	}

	// The copy must be independent of the source array.
	src.Indices[0] = 99
	if m.Indices[0] == 99 {
		t.Error("converted indices alias the source array")
	}
}

func TestConvertMeshRejectsMismatchedNormals(t *testing.T) {
	src := SourceMesh{
		Name:      "broken",
		Positions: make([]float32, 9),
		Normals:   make([]float32, 6),
	}
	if _, err := ConvertMesh(src); err == nil {
		t.Error("expected error for mismatched position/normal arrays")
	}

	src = SourceMesh{Positions: make([]float32, 4), Normals: make([]float32, 4)}
	if _, err := ConvertMesh(src); err == nil {
		t.Error("expected error for non-triplet position array")
	}
}

func TestFlattenRebasesIndices(t *testing.T) {
	a := Mesh[Vertex, uint32]{Vertices: make([]Vertex, 3), Indices: []uint32{0, 1, 2}}
	b := Mesh[Vertex, uint32]{Vertices: make([]Vertex, 2), Indices: []uint32{0, 1}}

	vertices, indices, err := flatten([]Mesh[Vertex, uint32]{a, b})
	if err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	if len(vertices) != 5 {
		t.Errorf("expected 5 vertices, got %d", len(vertices))
	}
	want := []uint32{0, 1, 2, 3, 4}
	if len(indices) != len(want) {
		t.Fatalf("expected %d indices, got %d", len(want), len(indices))
	}
	for k := range want {
		if indices[k] != want[k] {
			t.Errorf("index %d = %d, want %d", k, indices[k], want[k])
		}
	}
}

func TestFlattenRejectsIndexOverflow(t *testing.T) {
	a := Mesh[Vertex, uint16]{Vertices: make([]Vertex, 1<<16-1), Indices: []uint16{0}}
	b := Mesh[Vertex, uint16]{Vertices: make([]Vertex, 2), Indices: []uint16{1}}

	if _, _, err := flatten([]Mesh[Vertex, uint16]{a, b}); err == nil {
		t.Error("expected overflow error rebasing uint16 indices past 65535")
	}
}

func TestVertexLayout(t *testing.T) {
	l := Vertex{}.Layout()
	if l.Stride != 24 {
		t.Errorf("vertex stride = %d, want 24", l.Stride)
	}
	if len(l.Attributes) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(l.Attributes))
	}
	if l.Attributes[0].Offset != 0 || l.Attributes[0].Format != FormatFloat32x3 {
		t.Errorf("unexpected position attribute: %+v", l.Attributes[0])
	}
	if l.Attributes[1].Offset != 12 || l.Attributes[1].Format != FormatFloat32x3 {
		t.Errorf("unexpected normal attribute: %+v", l.Attributes[1])
	}
}
