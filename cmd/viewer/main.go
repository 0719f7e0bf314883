// Command viewer loads a mesh file, uploads it to the GPU and spins it in a
// window until the user closes it.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/FrozenDroid/frozengame"
	"github.com/FrozenDroid/frozengame/gpu"
	"github.com/FrozenDroid/frozengame/internal/config"
	"github.com/FrozenDroid/frozengame/internal/logger"
	"github.com/FrozenDroid/frozengame/model"
	"github.com/FrozenDroid/frozengame/stl"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml if present)")
	modelPath := flag.String("model", "", "mesh file to view, overrides the config")
	validate := flag.Bool("validate", false, "enable Vulkan validation layers")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Init("info", "")
		logger.Fatal("loading config", zap.Error(err))
	}
	if *modelPath != "" {
		cfg.Assets.Model = *modelPath
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, *validate); err != nil {
		logger.Fatal("viewer failed", zap.Error(err))
	}
}

func run(cfg *config.Config, validate bool) error {
	engine, err := frozengame.New(frozengame.Options{
		Title:            cfg.Graphics.Title,
		Width:            int32(cfg.Graphics.Width),
		Height:           int32(cfg.Graphics.Height),
		EnableValidation: validate,
		MaterialDir:      cfg.Assets.MaterialDir,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	renderer, err := engine.NewRenderer(cfg.Graphics.FramesInFlight)
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	pipeline, err := engine.NewPipeline(renderer, gpu.PipelineConfig{
		VertexShader:     cfg.Assets.VertexShader,
		FragmentShader:   cfg.Assets.FragmentShader,
		VertexLayout:     model.Vertex{}.Layout(),
		PushConstantSize: int(unsafe.Sizeof(mgl32.Mat4{})),
	})
	if err != nil {
		return err
	}
	defer pipeline.Destroy()

	m, err := loadModel(engine, pipeline, cfg.Assets.Model)
	if err != nil {
		return err
	}
	logger.Info("model uploaded",
		zap.String("path", cfg.Assets.Model),
		zap.Int("index_count", m.IndexBuffer().IndexCount()),
	)

	view := mgl32.LookAtV(
		mgl32.Vec3{0, 1.5, 3},
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 1, 0},
	)
	return renderer.Loop(func(elapsed time.Duration, rec *gpu.Recorder) error {
		proj := mgl32.Perspective(mgl32.DegToRad(45), renderer.Aspect(), 0.1, 100)
		spin := mgl32.HomogRotate3DY(float32(elapsed.Seconds()))
		mvp := proj.Mul4(view).Mul4(spin)
		return m.DrawWithConstants(rec, renderer.FullView(), matBytes(&mvp))
	})
}

// loadModel picks the parser by file extension, defaulting to OBJ.
func loadModel(engine *frozengame.Engine, pipeline *gpu.Pipeline, path string) (*model.Model, error) {
	var b *model.Builder[model.Vertex, uint32]
	if strings.EqualFold(filepath.Ext(path), ".stl") {
		b = engine.ModelBuilderFrom(pipeline, stl.Source())
	} else {
		b = engine.ModelBuilder(pipeline)
	}
	b, err := b.WithSourcePath(path)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

func matBytes(m *mgl32.Mat4) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&m[0])), int(unsafe.Sizeof(*m)))
}
