package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMeshes is returned by Build when no source has been parsed
	// successfully.
	ErrMissingMeshes = errors.New("model: no meshes attached to builder")

	// ErrMissingVertexShader and ErrMissingFragmentShader are returned by Build
	// when the target pipeline lacks the corresponding programmable stage.
	ErrMissingVertexShader   = errors.New("model: pipeline has no vertex shader stage")
	ErrMissingFragmentShader = errors.New("model: pipeline has no fragment shader stage")

	// ErrBuilderConsumed is returned when Build is called on a builder that has
	// already produced a Model.
	ErrBuilderConsumed = errors.New("model: builder already consumed by Build")
)

// UploadError reports a failed device buffer upload during Build.
type UploadError struct {
	Usage Usage
	Size  int
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("model: upload of %d byte %s buffer failed: %v", e.Size, e.Usage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// DrawError reports that a draw could not be recorded, typically because the
// pipeline, vertex buffers or resource sets handed to Draw do not fit together.
type DrawError struct {
	Err error
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("model: recording indexed draw failed: %v", e.Err)
}

func (e *DrawError) Unwrap() error { return e.Err }
