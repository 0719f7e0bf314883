package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ParseFunc reads one byte stream and yields zero or more named sub-meshes.
// Loaders for concrete formats (obj, stl) provide implementations.
type ParseFunc func(r io.Reader) ([]SourceMesh, error)

// ConvertFunc turns one parsed sub-mesh into the builder's internal mesh
// representation.
type ConvertFunc[V any, I Index] func(SourceMesh) (Mesh[V, I], error)

// Builder accumulates mesh geometry from sources and, on Build, materializes it
// as immutable device buffers bound to a pipeline. A builder belongs to a single
// goroutine and is consumed by Build.
type Builder[V any, I Index] struct {
	queue    Queue
	pipeline Pipeline
	parse    ParseFunc
	convert  ConvertFunc[V, I]

	// nil means "no geometry yet"; an empty, non-nil slice means a source parsed
	// successfully but contained no sub-meshes.
	meshes []Mesh[V, I]
	built  bool
}

// NewBuilder returns a builder for the default Vertex/uint32 geometry layout.
// The queue and pipeline are shared handles; the builder never mutates them.
func NewBuilder(queue Queue, pipeline Pipeline, parse ParseFunc) *Builder[Vertex, uint32] {
	return NewBuilderFor[Vertex, uint32](queue, pipeline, parse, ConvertMesh)
}

// NewBuilderFor returns a builder for a caller-chosen vertex type and index
// width. The convert function carries the vertex-layout knowledge; the builder
// itself only ever moves opaque records.
func NewBuilderFor[V any, I Index](queue Queue, pipeline Pipeline, parse ParseFunc, convert ConvertFunc[V, I]) *Builder[V, I] {
	return &Builder[V, I]{
		queue:    queue,
		pipeline: pipeline,
		parse:    parse,
		convert:  convert,
	}
}

// WithSource parses the stream and, on success, REPLACES any previously attached
// geometry with the result. On any parse or conversion error the builder is left
// untouched and the error is returned; callers that want the old silent-degrade
// chaining use TryWithSource instead.
func (b *Builder[V, I]) WithSource(r io.Reader) (*Builder[V, I], error) {
	sources, err := b.parse(r)
	if err != nil {
		return b, fmt.Errorf("parsing mesh source: %w", err)
	}
	meshes := make([]Mesh[V, I], 0, len(sources))
	for _, src := range sources {
		m, err := b.convert(src)
		if err != nil {
			return b, fmt.Errorf("converting mesh %q: %w", src.Name, err)
		}
		meshes = append(meshes, m)
	}
	b.meshes = meshes
	return b, nil
}

// WithSourcePath opens the file and delegates to WithSource. A missing or
// unreadable file leaves the builder unchanged and reports the error.
func (b *Builder[V, I]) WithSourcePath(path string) (*Builder[V, I], error) {
	f, err := os.Open(path)
	if err != nil {
		return b, fmt.Errorf("opening mesh source: %w", err)
	}
	defer f.Close()
	return b.WithSource(bufio.NewReader(f))
}

// TryWithSource is the best-effort variant of WithSource: failures are dropped
// and the builder keeps whatever geometry it had.
func (b *Builder[V, I]) TryWithSource(r io.Reader) *Builder[V, I] {
	bb, _ := b.WithSource(r)
	return bb
}

// TryWithSourcePath is the best-effort variant of WithSourcePath.
func (b *Builder[V, I]) TryWithSourcePath(path string) *Builder[V, I] {
	bb, _ := b.WithSourcePath(path)
	return bb
}

// Build validates the pipeline, flattens all attached meshes and uploads the
// result as one immutable vertex buffer and one immutable index buffer. The call
// blocks until both uploads are enqueued on the queue. Build consumes the
// builder; later calls fail with ErrBuilderConsumed.
func (b *Builder[V, I]) Build() (*Model, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	if !b.pipeline.HasVertexStage() {
		return nil, ErrMissingVertexShader
	}
	if !b.pipeline.HasFragmentStage() {
		return nil, ErrMissingFragmentShader
	}
	if b.meshes == nil {
		return nil, ErrMissingMeshes
	}

	vertices, indices, err := flatten(b.meshes)
	if err != nil {
		return nil, err
	}
	b.built = true

	vertexData := rawBytes(vertices)
	vertexBuf, err := b.queue.UploadImmutable(vertexData, UsageVertex)
	if err != nil {
		return nil, &UploadError{Usage: UsageVertex, Size: len(vertexData), Err: err}
	}
	indexData := rawBytes(indices)
	indexBuf, err := b.queue.UploadImmutable(indexData, UsageIndex)
	if err != nil {
		return nil, &UploadError{Usage: UsageIndex, Size: len(indexData), Err: err}
	}

	return &Model{
		vertexBuffers: []Buffer{vertexBuf},
		indexBuffer: typedIndexBuffer{
			Buffer: indexBuf,
			width:  widthOf[I](),
			count:  len(indices),
		},
		pipeline: b.pipeline,
	}, nil
}
