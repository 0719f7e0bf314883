package model

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the default vertex record: an object-space position and its normal,
// tightly packed as six float32 (24 byte). It matches the layout the standard
// shaders expect at locations 0 and 1.
type Vertex struct {
	Pos    mgl32.Vec3
	Normal mgl32.Vec3
}

// Format describes the component layout of a single vertex attribute, independent
// of any graphics API. The backend maps it onto its own format enum.
type Format uint8

const (
	FormatFloat32x2 Format = iota + 1
	FormatFloat32x3
	FormatFloat32x4
)

// VertexAttribute locates one attribute inside a vertex record.
type VertexAttribute struct {
	Location uint32
	Offset   uint32
	Format   Format
}

// VertexLayout describes how a vertex type is laid out in buffer memory. Pipelines
// are created against a layout; the builder only moves bytes and never interprets
// it.
type VertexLayout struct {
	Stride     uint32
	Attributes []VertexAttribute
}

// Layout reports the buffer layout of Vertex.
func (Vertex) Layout() VertexLayout {
	return VertexLayout{
		Stride: uint32(unsafe.Sizeof(Vertex{})),
		Attributes: []VertexAttribute{
			{Location: 0, Offset: uint32(unsafe.Offsetof(Vertex{}.Pos)), Format: FormatFloat32x3},
			{Location: 1, Offset: uint32(unsafe.Offsetof(Vertex{}.Normal)), Format: FormatFloat32x3},
		},
	}
}

// Index constrains the supported index widths.
type Index interface {
	~uint16 | ~uint32
}

// IndexWidth is the byte width of one index element.
type IndexWidth uint8

const (
	IndexWidthUint16 IndexWidth = 2
	IndexWidthUint32 IndexWidth = 4
)

func widthOf[I Index]() IndexWidth {
	var zero I
	return IndexWidth(unsafe.Sizeof(zero))
}

func maxOf[I Index]() uint64 {
	switch widthOf[I]() {
	case IndexWidthUint16:
		return 1<<16 - 1
	default:
		return 1<<32 - 1
	}
}

// rawBytes drops the type information from a slice so its backing memory can be
// handed to the upload queue. The element type must be trivially copyable.
func rawBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}
