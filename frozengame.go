// Package frozengame boots the engine: one call brings up the SDL window, the
// Vulkan device and the upload queue, and hands out model builders wired to
// the Wavefront OBJ loader. The lower level packages stay usable on their own;
// this is just the convenient front door.
package frozengame

import (
	"fmt"

	"github.com/FrozenDroid/frozengame/gpu"
	"github.com/FrozenDroid/frozengame/model"
	"github.com/FrozenDroid/frozengame/obj"
)

// Options configure engine startup.
type Options struct {
	Title            string
	Width, Height    int32
	EnableValidation bool

	// MaterialDir is where OBJ material libraries are resolved. Empty means
	// materials are ignored.
	MaterialDir string
}

// Engine bundles the window, device and upload queue of a running instance.
type Engine struct {
	Window *gpu.Window
	Device *gpu.Device
	queue  *gpu.Queue

	materials obj.MaterialResolver
}

// New starts SDL and Vulkan and selects a device. The returned engine must be
// closed again to release the window and device.
func New(opts Options) (*Engine, error) {
	if opts.Title == "" {
		opts.Title = "frozengame"
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	var layers []string
	if opts.EnableValidation {
		layers = gpu.ValidationLayers
	}

	win, err := gpu.NewWindow(opts.Title, opts.Width, opts.Height, layers)
	if err != nil {
		return nil, fmt.Errorf("starting window: %w", err)
	}
	dev, err := gpu.NewDevice(win, opts.EnableValidation)
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("starting device: %w", err)
	}
	queue, err := gpu.NewQueue(dev)
	if err != nil {
		dev.Destroy()
		win.Destroy()
		return nil, fmt.Errorf("starting upload queue: %w", err)
	}

	materials := obj.IgnoreMaterials
	if opts.MaterialDir != "" {
		materials = obj.FileMaterials(opts.MaterialDir)
	}
	return &Engine{Window: win, Device: dev, queue: queue, materials: materials}, nil
}

// GraphicsQueue returns the upload queue models are built against.
func (e *Engine) GraphicsQueue() model.Queue { return e.queue }

// NewRenderer builds a renderer over the engine's window and device.
func (e *Engine) NewRenderer(framesInFlight int) (*gpu.Renderer, error) {
	return gpu.NewRenderer(e.Device, e.Window, framesInFlight)
}

// NewPipeline compiles a pipeline against the renderer's pass.
func (e *Engine) NewPipeline(r *gpu.Renderer, cfg gpu.PipelineConfig) (*gpu.Pipeline, error) {
	return gpu.NewPipeline(e.Device, r.RenderPass(), cfg)
}

// ModelBuilder returns a builder for the standard vertex format fed by the
// Wavefront OBJ parser.
func (e *Engine) ModelBuilder(pipeline model.Pipeline) *model.Builder[model.Vertex, uint32] {
	return model.NewBuilder(e.queue, pipeline, obj.Source(e.materials))
}

// ModelBuilderFrom returns a builder fed by the given parser instead of the
// OBJ default, for formats like binary STL.
func (e *Engine) ModelBuilderFrom(pipeline model.Pipeline, parse model.ParseFunc) *model.Builder[model.Vertex, uint32] {
	return model.NewBuilder(e.queue, pipeline, parse)
}

// Close waits for the device to go idle and releases the queue, device and
// window.
func (e *Engine) Close() {
	e.Device.WaitIdle()
	e.queue.Destroy()
	e.Device.Destroy()
	e.Window.Destroy()
}
