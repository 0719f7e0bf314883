package model

import "fmt"

// SourceMesh is the parser-facing mesh description: parallel flat arrays of
// position and normal components plus an index array, exactly as a format loader
// (obj, stl) emits them. Material references are resolved by the loader and
// ignored here.
type SourceMesh struct {
	Name      string
	Positions []float32
	Normals   []float32
	Indices   []uint32
}

// Mesh is the internal, flattened geometry record the builder accumulates. It is
// generic over the vertex representation and the index width so one builder can
// target different shader vertex layouts.
type Mesh[V any, I Index] struct {
	Vertices []V
	Indices  []I
}

// ConvertMesh turns a SourceMesh into the default Mesh[Vertex, uint32]: one vertex
// per position triplet, normals paired by position, indices copied unchanged.
// Mismatched position/normal array lengths are a data error and fail the
// conversion.
func ConvertMesh(src SourceMesh) (Mesh[Vertex, uint32], error) {
	if len(src.Positions) != len(src.Normals) {
		return Mesh[Vertex, uint32]{}, fmt.Errorf(
			"mesh %q: %d position components but %d normal components", src.Name, len(src.Positions), len(src.Normals))
	}
	if len(src.Positions)%3 != 0 {
		return Mesh[Vertex, uint32]{}, fmt.Errorf(
			"mesh %q: position array length %d is not a multiple of 3", src.Name, len(src.Positions))
	}

	vertices := make([]Vertex, len(src.Positions)/3)
	for i := range vertices {
		vertices[i] = Vertex{
			Pos:    [3]float32{src.Positions[i*3], src.Positions[i*3+1], src.Positions[i*3+2]},
			Normal: [3]float32{src.Normals[i*3], src.Normals[i*3+1], src.Normals[i*3+2]},
		}
	}
	indices := make([]uint32, len(src.Indices))
	copy(indices, src.Indices)

	return Mesh[Vertex, uint32]{Vertices: vertices, Indices: indices}, nil
}

// flatten concatenates the meshes into one vertex run and one index run. Vertices
// keep their per-mesh order, meshes keep call order. Each mesh's indices are
// rebased onto the running vertex count so they stay valid in the concatenated
// buffer; a rebased index that no longer fits the index width fails the build.
func flatten[V any, I Index](meshes []Mesh[V, I]) ([]V, []I, error) {
	var vertices []V
	var indices []I
	limit := maxOf[I]()
	for n, m := range meshes {
		base := uint64(len(vertices))
		for _, idx := range m.Indices {
			rebased := base + uint64(idx)
			if rebased > limit {
				return nil, nil, fmt.Errorf(
					"mesh %d: index %d rebased to %d exceeds the %d byte index width", n, idx, rebased, widthOf[I]())
			}
			indices = append(indices, I(rebased))
		}
		vertices = append(vertices, m.Vertices...)
	}
	return vertices, indices, nil
}
