package model

// The graphics backend is a collaborator of this package, not a part of it. These
// interfaces state exactly what the builder and the drawable need from it: a queue
// that can turn raw bytes into immutable device buffers, an opaque pipeline that can
// report its bound shader stages, and a command recorder that can append one indexed
// draw. The gpu package implements them on top of Vulkan; tests implement them in
// memory.

// Usage declares what a device buffer will be bound as.
type Usage uint8

const (
	UsageVertex Usage = iota + 1
	UsageIndex
)

func (u Usage) String() string {
	switch u {
	case UsageVertex:
		return "vertex"
	case UsageIndex:
		return "index"
	}
	return "unknown"
}

// Buffer is a handle to finalized device memory. The pointee is immutable; holders
// may share and drop references freely but never mutate through them.
type Buffer interface {
	// Size reports the buffer payload size in bytes.
	Size() int
}

// IndexBuffer is a Buffer whose content is a run of indices of a known width.
type IndexBuffer interface {
	Buffer
	IndexWidth() IndexWidth
	IndexCount() int
	// Unwrap returns the uploaded buffer the width and count describe, so a
	// backend can recover its own handle type at bind time.
	Unwrap() Buffer
}

// Queue uploads data to device-local memory. UploadImmutable blocks until the
// transfer is enqueued on the owning device queue; transfer completion is the
// submission layer's business. There is no retry and no cancellation.
type Queue interface {
	UploadImmutable(data []byte, usage Usage) (Buffer, error)
}

// Pipeline is an opaque handle to a compiled graphics pipeline. The builder only
// ever inspects which programmable stages are bound; everything else about the
// pipeline stays with the backend that created it.
type Pipeline interface {
	HasVertexStage() bool
	HasFragmentStage() bool
}

// Viewport mirrors the dynamic viewport state set at draw-record time.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// Rect is a scissor rectangle in framebuffer coordinates.
type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// DynamicState carries the per-draw dynamic pipeline state.
type DynamicState struct {
	Viewport Viewport
	Scissor  Rect
}

// ResourceSet is an opaque shader resource binding (a descriptor set in Vulkan
// terms). The recorder that receives it decides whether it is compatible.
type ResourceSet interface{}

// Recorder appends commands to a command buffer under construction. DrawIndexed
// binds the full draw state and appends one indexed draw; it must not submit
// anything.
type Recorder interface {
	DrawIndexed(pipeline Pipeline, state DynamicState, vertexBuffers []Buffer, indexBuffer IndexBuffer, sets []ResourceSet, pushConstants []byte) error
}
