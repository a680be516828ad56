// Package config handles configuration loading and management.
package config

// Config holds all application settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Ocean    OceanConfig    `yaml:"ocean"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// OceanConfig holds wave simulation and shading settings.
type OceanConfig struct {
	// Resolution of the displacement/normal maps (texels per side).
	Resolution int `yaml:"resolution"`
	// UpdateRate is the simulation rate in updates per second.
	// 0 means step every rendered frame.
	UpdateRate float32 `yaml:"update_rate"`
	// ReadbackBudget is the total GPU-to-CPU refresh budget in seconds,
	// divided evenly across active cascades.
	ReadbackBudget float32 `yaml:"readback_budget"`
	// HeightSteps is the iteration count for height queries.
	HeightSteps int `yaml:"height_steps"`

	Roughness    float32    `yaml:"roughness"`
	WaterColor   [3]float32 `yaml:"water_color"`   // linear RGB
	ShallowColor [3]float32 `yaml:"shallow_color"` // linear RGB
	FoamColor    [3]float32 `yaml:"foam_color"`    // linear RGB
	// Extinction holds per-channel Beer-Lambert extinction distances
	// in world units.
	Extinction [3]float32 `yaml:"extinction"`

	Cascades []CascadeConfig `yaml:"cascades"`
}

// CascadeConfig holds authored parameters for one wave cascade.
type CascadeConfig struct {
	TileLength        [2]float32 `yaml:"tile_length"`
	DisplacementScale float32    `yaml:"displacement_scale"`
	NormalScale       float32    `yaml:"normal_scale"`
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
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Ocean: OceanConfig{
			Resolution:     256,
			UpdateRate:     30,
			ReadbackBudget: 1.0 / 120.0,
			HeightSteps:    3,
			Roughness:      0.1,
			WaterColor:     [3]float32{0.012, 0.064, 0.094},
			ShallowColor:   [3]float32{0.10, 0.35, 0.36},
			FoamColor:      [3]float32{0.73, 0.85, 0.86},
			Extinction:     [3]float32{4.5, 15.0, 32.0},
			Cascades: []CascadeConfig{
				{TileLength: [2]float32{256, 256}, DisplacementScale: 1.0, NormalScale: 1.0},
				{TileLength: [2]float32{32, 32}, DisplacementScale: 0.6, NormalScale: 1.0},
				{TileLength: [2]float32{4, 4}, DisplacementScale: 0.25, NormalScale: 0.75},
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
