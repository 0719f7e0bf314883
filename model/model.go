package model

// Model is the finished, GPU-resident result of a Build: an immutable vertex
// buffer, an immutable index buffer and the pipeline they were built against.
// A Model holds no CPU-side geometry, is safe for concurrent use and stays valid
// for as long as any reference to it (including recorded command buffers) lives.
type Model struct {
	vertexBuffers []Buffer
	indexBuffer   IndexBuffer
	pipeline      Pipeline
}

// typedIndexBuffer decorates an uploaded buffer with the index width and element
// count the recorder needs at bind time.
type typedIndexBuffer struct {
	Buffer
	width IndexWidth
	count int
}

func (b typedIndexBuffer) IndexWidth() IndexWidth { return b.width }
func (b typedIndexBuffer) IndexCount() int        { return b.count }
func (b typedIndexBuffer) Unwrap() Buffer         { return b.Buffer }

// VertexBuffers returns the model's vertex buffer handles.
func (m *Model) VertexBuffers() []Buffer { return m.vertexBuffers }

// IndexBuffer returns the model's index buffer handle.
func (m *Model) IndexBuffer() IndexBuffer { return m.indexBuffer }

// Pipeline returns the pipeline this model was built against.
func (m *Model) Pipeline() Pipeline { return m.pipeline }

// Draw appends one indexed draw of the whole model to the recorder: pipeline,
// dynamic state, vertex and index buffers and the caller's resource sets. The
// draw count is the index buffer's element count. Draw submits nothing and never
// mutates the model, so the same Model may be recorded into any number of
// command buffers with differing resource sets.
func (m *Model) Draw(rec Recorder, state DynamicState, sets ...ResourceSet) error {
	return m.DrawWithConstants(rec, state, nil, sets...)
}

// DrawWithConstants is Draw with an additional push constant payload, handed to
// the recorder verbatim.
func (m *Model) DrawWithConstants(rec Recorder, state DynamicState, pushConstants []byte, sets ...ResourceSet) error {
	err := rec.DrawIndexed(m.pipeline, state, m.vertexBuffers, m.indexBuffer, sets, pushConstants)
	if err != nil {
		return &DrawError{Err: err}
	}
	return nil
}
