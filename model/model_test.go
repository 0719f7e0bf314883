package model

import (
	"errors"
	"strings"
	"testing"
)

type recordedDraw struct {
	pipeline      Pipeline
	state         DynamicState
	vertexBuffers []Buffer
	indexBuffer   IndexBuffer
	sets          []ResourceSet
	pushConstants []byte
}

type fakeRecorder struct {
	draws []recordedDraw
	err   error
}

func (r *fakeRecorder) DrawIndexed(p Pipeline, st DynamicState, verts []Buffer, idx IndexBuffer, sets []ResourceSet, push []byte) error {
	if r.err != nil {
		return r.err
	}
	r.draws = append(r.draws, recordedDraw{
		pipeline:      p,
		state:         st,
		vertexBuffers: verts,
		indexBuffer:   idx,
		sets:          sets,
		pushConstants: push,
	})
	return nil
}

func builtModel(t *testing.T) *Model {
	t.Helper()
	b := NewBuilder(&fakeQueue{}, completePipeline(), parserOf(sourceMeshOfSize(4, 0, 1, 2, 2, 3, 0)))
	m, err := b.TryWithSource(strings.NewReader("")).Build()
	if err != nil {
		t.Fatalf("building test model: %v", err)
	}
	return m
}

func TestDrawRecordsModelBindings(t *testing.T) {
	m := builtModel(t)
	rec := &fakeRecorder{}
	state := DynamicState{
		Viewport: Viewport{Width: 640, Height: 480, MaxDepth: 1},
		Scissor:  Rect{Width: 640, Height: 480},
	}

	if err := m.Draw(rec, state, "set-a"); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if len(rec.draws) != 1 {
		t.Fatalf("expected 1 recorded draw, got %d", len(rec.draws))
	}
	d := rec.draws[0]
	if d.pipeline != m.Pipeline() {
		t.Error("recorded pipeline differs from the model's pipeline")
	}
	if d.state != state {
		t.Errorf("recorded state = %+v, want %+v", d.state, state)
	}
	if d.indexBuffer.IndexCount() != 6 {
		t.Errorf("recorded index count = %d, want 6", d.indexBuffer.IndexCount())
	}
}

func TestDrawTwiceIsIndependent(t *testing.T) {
	m := builtModel(t)
	rec := &fakeRecorder{}

	if err := m.Draw(rec, DynamicState{}, "set-a"); err != nil {
		t.Fatalf("first Draw failed: %v", err)
	}
	if err := m.Draw(rec, DynamicState{}, "set-b", "set-c"); err != nil {
		t.Fatalf("second Draw failed: %v", err)
	}

	if len(rec.draws) != 2 {
		t.Fatalf("expected 2 recorded draws, got %d", len(rec.draws))
	}
	a, b := rec.draws[0], rec.draws[1]
	if a.vertexBuffers[0] != b.vertexBuffers[0] || a.indexBuffer != b.indexBuffer {
		t.Error("both draws must bind the same model buffers")
	}
	if len(a.sets) == len(b.sets) {
		t.Error("draws were recorded with differing resource sets but lengths match")
	}
}

func TestDrawWrapsRecorderErrors(t *testing.T) {
	m := builtModel(t)
	cause := errors.New("vertex layout mismatch")
	rec := &fakeRecorder{err: cause}

	err := m.Draw(rec, DynamicState{})
	var de *DrawError
	if !errors.As(err, &de) {
		t.Fatalf("Draw = %v, want *DrawError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("DrawError must wrap the recorder's error")
	}
}
