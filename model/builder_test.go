package model

import (
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"
)

// In-memory stand-ins for the graphics backend. The builder only ever sees these
// interfaces, so the whole build protocol is testable without a device.

type fakeBuffer struct {
	data  []byte
	usage Usage
}

func (b *fakeBuffer) Size() int { return len(b.data) }

type fakeQueue struct {
	uploads []*fakeBuffer
	failOn  Usage
	err     error
}

func (q *fakeQueue) UploadImmutable(data []byte, usage Usage) (Buffer, error) {
	if q.failOn == usage && q.err != nil {
		return nil, q.err
	}
	buf := &fakeBuffer{data: append([]byte(nil), data...), usage: usage}
	q.uploads = append(q.uploads, buf)
	return buf, nil
}

type fakePipeline struct {
	vert, frag bool
}

func (p *fakePipeline) HasVertexStage() bool   { return p.vert }
func (p *fakePipeline) HasFragmentStage() bool { return p.frag }

func completePipeline() *fakePipeline { return &fakePipeline{vert: true, frag: true} }

// parserOf yields the given meshes for any stream.
func parserOf(meshes ...SourceMesh) ParseFunc {
	return func(io.Reader) ([]SourceMesh, error) {
		return meshes, nil
	}
}

// sourceMeshOfSize fabricates a valid SourceMesh with n vertices.
func sourceMeshOfSize(n int, indices ...uint32) SourceMesh {
	return SourceMesh{
		Positions: make([]float32, n*3),
		Normals:   make([]float32, n*3),
		Indices:   indices,
	}
}

func TestBuildWithoutGeometryFails(t *testing.T) {
	b := NewBuilder(&fakeQueue{}, completePipeline(), parserOf())
	if _, err := b.Build(); !errors.Is(err, ErrMissingMeshes) {
		t.Errorf("Build without sources = %v, want ErrMissingMeshes", err)
	}
}

func TestBuildValidatesPipelineStages(t *testing.T) {
	q := &fakeQueue{}
	parse := parserOf(sourceMeshOfSize(3, 0, 1, 2))

	b := NewBuilder(q, &fakePipeline{frag: true}, parse).TryWithSource(strings.NewReader(""))
	if _, err := b.Build(); !errors.Is(err, ErrMissingVertexShader) {
		t.Errorf("Build = %v, want ErrMissingVertexShader", err)
	}

	b = NewBuilder(q, &fakePipeline{vert: true}, parse).TryWithSource(strings.NewReader(""))
	if _, err := b.Build(); !errors.Is(err, ErrMissingFragmentShader) {
		t.Errorf("Build = %v, want ErrMissingFragmentShader", err)
	}
}

func TestWithSourceReplacesPreviousGeometry(t *testing.T) {
	q := &fakeQueue{}
	b := NewBuilder(q, completePipeline(), parserOf(sourceMeshOfSize(3, 0, 1, 2)))

	b, err := b.WithSource(strings.NewReader("first"))
	if err != nil {
		t.Fatalf("first WithSource failed: %v", err)
	}

	// Swap the parser result and attach again; only the later call must survive.
	b.parse = parserOf(sourceMeshOfSize(2, 0, 1))
	b, err = b.WithSource(strings.NewReader("second"))
	if err != nil {
		t.Fatalf("second WithSource failed: %v", err)
	}

	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := m.VertexBuffers()[0].Size(); got != 2*24 {
		t.Errorf("vertex buffer size = %d bytes, want %d (2 vertices)", got, 2*24)
	}
	if got := m.IndexBuffer().IndexCount(); got != 2 {
		t.Errorf("index count = %d, want 2", got)
	}
}

func TestWithSourceFailureLeavesBuilderUnchanged(t *testing.T) {
	q := &fakeQueue{}
	b := NewBuilder(q, completePipeline(), parserOf(sourceMeshOfSize(3, 0, 1, 2)))
	b, err := b.WithSource(strings.NewReader(""))
	if err != nil {
		t.Fatalf("WithSource failed: %v", err)
	}

	b.parse = func(io.Reader) ([]SourceMesh, error) { return nil, errors.New("scrambled bytes") }
	if _, err := b.WithSource(strings.NewReader("")); err == nil {
		t.Fatal("expected parse error to surface")
	}

	// The earlier geometry must still build.
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build after failed WithSource: %v", err)
	}
	if got := m.IndexBuffer().IndexCount(); got != 3 {
		t.Errorf("index count = %d, want 3 from the earlier source", got)
	}
}

func TestWithSourcePathMissingFile(t *testing.T) {
	b := NewBuilder(&fakeQueue{}, completePipeline(), parserOf(sourceMeshOfSize(3, 0, 1, 2)))

	_, err := b.WithSourcePath("testdata/does-not-exist.obj")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	// State must be untouched: still no geometry.
	if _, err := b.Build(); !errors.Is(err, ErrMissingMeshes) {
		t.Errorf("Build = %v, want ErrMissingMeshes after failed path attach", err)
	}
}

func TestTryWithSourcePathIsSilent(t *testing.T) {
	b := NewBuilder(&fakeQueue{}, completePipeline(), parserOf(sourceMeshOfSize(3, 0, 1, 2)))
	if got := b.TryWithSourcePath("testdata/does-not-exist.obj"); got != b {
		t.Error("TryWithSourcePath must hand back the same builder")
	}
}

func TestBuildUploadsFlattenedGeometry(t *testing.T) {
	q := &fakeQueue{}
	b := NewBuilder(q, completePipeline(), parserOf(sourceMeshOfSize(4, 0, 1, 2, 2, 3, 0)))

	m, err := b.TryWithSource(strings.NewReader("")).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(q.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(q.uploads))
	}
	if q.uploads[0].usage != UsageVertex || q.uploads[1].usage != UsageIndex {
		t.Errorf("upload usages = %v, %v; want vertex then index", q.uploads[0].usage, q.uploads[1].usage)
	}
	if got := q.uploads[0].Size(); got != 4*24 {
		t.Errorf("vertex upload = %d bytes, want %d (4 vertices)", got, 4*24)
	}

	want := []uint32{0, 1, 2, 2, 3, 0}
	raw := q.uploads[1].data
	if len(raw) != len(want)*4 {
		t.Fatalf("index upload = %d bytes, want %d", len(raw), len(want)*4)
	}
	for k := range want {
		if got := binary.NativeEndian.Uint32(raw[k*4:]); got != want[k] {
			t.Errorf("uploaded index %d = %d, want %d", k, got, want[k])
		}
	}
	if got := m.IndexBuffer().IndexWidth(); got != IndexWidthUint32 {
		t.Errorf("index width = %d, want %d", got, IndexWidthUint32)
	}
}

func TestBuildSurfacesUploadErrors(t *testing.T) {
	cause := errors.New("device lost")
	q := &fakeQueue{failOn: UsageIndex, err: cause}
	b := NewBuilder(q, completePipeline(), parserOf(sourceMeshOfSize(3, 0, 1, 2)))

	_, err := b.TryWithSource(strings.NewReader("")).Build()
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("Build = %v, want *UploadError", err)
	}
	if ue.Usage != UsageIndex || !errors.Is(err, cause) {
		t.Errorf("UploadError = %+v, want index usage wrapping the device error", ue)
	}
}

func TestBuildConsumesBuilder(t *testing.T) {
	b := NewBuilder(&fakeQueue{}, completePipeline(), parserOf(sourceMeshOfSize(3, 0, 1, 2)))
	b = b.TryWithSource(strings.NewReader(""))
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrBuilderConsumed) {
		t.Errorf("second Build = %v, want ErrBuilderConsumed", err)
	}
}
