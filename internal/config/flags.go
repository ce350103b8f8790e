package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config     string
	Debug      bool
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	Seed       uint64
	NoWatch    bool
	Speed      float32
}

// BindFlags registers the override flags on fs and returns their destination.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.Uint64Var(&f.Seed, "seed", 0, "Seed for default mesh colors")
	fs.BoolVar(&f.NoWatch, "no-watch", false, "Do not reload files when they change")
	fs.Float32Var(&f.Speed, "speed", 0, "Trackball rotation speed")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Windowed {
		cfg.Graphics.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Graphics.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Graphics.Height = f.Height
	}
	if f.Seed != 0 {
		cfg.Viewer.Seed = f.Seed
	}
	if f.NoWatch {
		cfg.Watch.Enabled = false
	}
	if f.Speed > 0 {
		cfg.Viewer.TrackballSpeed = f.Speed
	}
}
