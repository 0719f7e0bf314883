// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	Title          string `yaml:"title"`
	FramesInFlight int    `yaml:"frames_in_flight"`
}

// AssetsConfig holds paths to the geometry and shaders the viewer loads.
type AssetsConfig struct {
	Model          string `yaml:"model"` // .obj or .stl path
	MaterialDir    string `yaml:"material_dir"`
	VertexShader   string `yaml:"vertex_shader"`   // SPIR-V
	FragmentShader string `yaml:"fragment_shader"` // SPIR-V
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:          1280,
			Height:         720,
			Title:          "frozengame",
			FramesInFlight: 2,
		},
		Assets: AssetsConfig{
			Model:          "assets/model.obj",
			MaterialDir:    "assets",
			VertexShader:   "assets/shaders/mesh.vert.spv",
			FragmentShader: "assets/shaders/mesh.frag.spv",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
