package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Graphics.Width <= 0 || cfg.Graphics.Height <= 0 {
		t.Errorf("default resolution %dx%d not positive", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.FramesInFlight < 1 {
		t.Errorf("frames in flight = %d, want >= 1", cfg.Graphics.FramesInFlight)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `graphics:
  width: 640
assets:
  model: meshes/teapot.stl
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Graphics.Width != 640 {
		t.Errorf("width = %d, want 640", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != Default().Graphics.Height {
		t.Errorf("height = %d, want default %d", cfg.Graphics.Height, Default().Graphics.Height)
	}
	if cfg.Assets.Model != "meshes/teapot.stl" {
		t.Errorf("model = %q", cfg.Assets.Model)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("graphics: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}
