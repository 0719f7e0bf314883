// Package obj loads Wavefront OBJ geometry into the flat mesh records the model
// builder consumes. Decoding itself is delegated to the g3n engine's OBJ loader;
// this package flattens its face/index structure into parallel position/normal
// arrays with one vertex per unique position+normal pair.
package obj

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	g3nobj "github.com/g3n/engine/loader/obj"
	"go.uber.org/zap"

	"github.com/FrozenDroid/frozengame/internal/logger"
	"github.com/FrozenDroid/frozengame/model"
)

// MaterialResolver supplies the byte stream for a material library referenced by
// an OBJ file. Returning a nil reader skips material resolution for that
// library; the core ignores materials either way.
type MaterialResolver func(lib string) (io.Reader, error)

// IgnoreMaterials resolves every material library to nothing.
func IgnoreMaterials(string) (io.Reader, error) { return nil, nil }

// FileMaterials resolves material libraries relative to the given directory.
func FileMaterials(dir string) MaterialResolver {
	return func(lib string) (io.Reader, error) {
		f, err := os.Open(dir + string(os.PathSeparator) + lib)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// Source adapts Parse with a fixed resolver to the builder's ParseFunc shape.
func Source(resolve MaterialResolver) model.ParseFunc {
	return func(r io.Reader) ([]model.SourceMesh, error) {
		return Parse(r, resolve)
	}
}

// Parse decodes one OBJ stream into zero or more named sub-meshes, one per OBJ
// object. Faces are triangulated fan-wise and every face vertex must carry a
// normal reference; positions and normals come out as parallel flat arrays.
func Parse(r io.Reader, resolve MaterialResolver) ([]model.SourceMesh, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading obj stream: %w", err)
	}

	dec, err := g3nobj.DecodeReader(bytes.NewReader(raw), strings.NewReader(""))
	if err != nil {
		return nil, fmt.Errorf("decoding obj: %w", err)
	}

	// The material library name is only known after the first decode, so resolve
	// it now and decode once more with the library in place.
	if dec.Matlib != "" && resolve != nil {
		mr, err := resolve(dec.Matlib)
		if err != nil {
			return nil, fmt.Errorf("resolving material library %q: %w", dec.Matlib, err)
		}
		if mr != nil {
			if c, ok := mr.(io.Closer); ok {
				defer c.Close()
			}
			dec, err = g3nobj.DecodeReader(bytes.NewReader(raw), mr)
			if err != nil {
				return nil, fmt.Errorf("decoding obj with material library %q: %w", dec.Matlib, err)
			}
		}
	}

	meshes := make([]model.SourceMesh, 0, len(dec.Objects))
	for i := range dec.Objects {
		if len(dec.Objects[i].Faces) == 0 {
			continue
		}
		m, err := flattenObject(dec, &dec.Objects[i])
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
		logger.Debug("parsed obj object",
			zap.String("name", m.Name),
			zap.Int("vertices", len(m.Positions)/3),
			zap.Int("indices", len(m.Indices)),
		)
	}
	return meshes, nil
}

// ParseFile opens path and parses it, resolving material libraries next to the
// file.
func ParseFile(path string, resolve MaterialResolver) ([]model.SourceMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening obj file: %w", err)
	}
	defer f.Close()
	return Parse(f, resolve)
}

// flattenObject walks the object's faces and emits one vertex per unique
// (position, normal) index pair. The decoder's faces may be arbitrary polygons,
// so each one is split into a triangle fan.
func flattenObject(dec *g3nobj.Decoder, o *g3nobj.Object) (model.SourceMesh, error) {
	m := model.SourceMesh{Name: o.Name}
	seen := make(map[[2]int]uint32)

	emit := func(face *g3nobj.Face, corner int) error {
		pos := face.Vertices[corner]
		if pos < 0 || (pos+1)*3 > len(dec.Vertices) {
			return fmt.Errorf("obj object %q: face references position %d out of %d", o.Name, pos, len(dec.Vertices)/3)
		}
		nrm := -1
		if corner < len(face.Normals) {
			nrm = face.Normals[corner]
		}
		if nrm < 0 || (nrm+1)*3 > len(dec.Normals) {
			return fmt.Errorf("obj object %q: face vertex without a usable normal (need normals)", o.Name)
		}

		key := [2]int{pos, nrm}
		idx, ok := seen[key]
		if !ok {
			idx = uint32(len(m.Positions) / 3)
			m.Positions = append(m.Positions, dec.Vertices[pos*3], dec.Vertices[pos*3+1], dec.Vertices[pos*3+2])
			m.Normals = append(m.Normals, dec.Normals[nrm*3], dec.Normals[nrm*3+1], dec.Normals[nrm*3+2])
			seen[key] = idx
		}
		m.Indices = append(m.Indices, idx)
		return nil
	}

	for f := range o.Faces {
		face := &o.Faces[f]
		for corner := 2; corner < len(face.Vertices); corner++ {
			if err := emit(face, 0); err != nil {
				return model.SourceMesh{}, err
			}
			if err := emit(face, corner-1); err != nil {
				return model.SourceMesh{}, err
			}
			if err := emit(face, corner); err != nil {
				return model.SourceMesh{}, err
			}
		}
	}
	return m, nil
}
