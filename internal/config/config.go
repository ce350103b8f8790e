// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics    GraphicsConfig   `yaml:"graphics"`
	Viewer      ViewerConfig     `yaml:"viewer"`
	Watch       WatchConfig      `yaml:"watch"`
	Screenshots ScreenshotConfig `yaml:"screenshots"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
	MSAA       int  `yaml:"msaa"`
}

// ViewerConfig holds camera and interaction settings.
type ViewerConfig struct {
	TrackballSpeed   float32       `yaml:"trackball_speed"`
	ZoomStep         float32       `yaml:"zoom_step"`
	MinZoom          float32       `yaml:"min_zoom"`
	FOVDegrees       float32       `yaml:"fov_degrees"`
	Near             float32       `yaml:"near"`
	Far              float32       `yaml:"far"`
	Eye              [3]float32    `yaml:"eye"`
	LightPosition    [3]float32    `yaml:"light_position"`
	Seed             uint64        `yaml:"seed"` // 0 draws a random seed at startup
	EdgeWidth        float32       `yaml:"edge_width"`
	EdgeColor        [4]float32    `yaml:"edge_color"`
	TransparentAlpha float32       `yaml:"transparent_alpha"`
	FixDelay         time.Duration `yaml:"fix_delay"`
}

// WatchConfig controls hot reload of loaded mesh files.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// ScreenshotConfig controls where F12 captures are written.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
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
			MSAA:       4,
		},
		Viewer: ViewerConfig{
			TrackballSpeed:   4.0,
			ZoomStep:         0.05,
			MinZoom:          0.1,
			FOVDegrees:       45,
			Near:             1,
			Far:              100,
			Eye:              [3]float32{0, 0, 5},
			LightPosition:    [3]float32{0, 0.3, 0},
			EdgeWidth:        1.5,
			EdgeColor:        [4]float32{0, 0, 0, 1},
			TransparentAlpha: 0.4,
			FixDelay:         10 * time.Millisecond,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 250 * time.Millisecond,
		},
		Screenshots: ScreenshotConfig{
			Dir:    "screenshots",
			Prefix: "meshview",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
