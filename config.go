package pyrite

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"

	"github.com/pyrite3d/pyrite/post"
	"github.com/pyrite3d/pyrite/sim"
	"github.com/pyrite3d/pyrite/tess"
)

type Config struct {
	LogPrefix string `toml:"log_prefix"`
	Debug     bool   `toml:"debug"`

	Geometry GeometryConfig `toml:"geometry"`
	Sim      SimConfig      `toml:"sim"`
	Tess     TessConfig     `toml:"tess"`
	Post     PostConfig     `toml:"post"`
}

type GeometryConfig struct {
	// ReserveRatio controls buffer over-allocation on growth. Values
	// below 1 are treated as 1 (exact fit).
	ReserveRatio float64 `toml:"reserve_ratio"`
}

type SimConfig struct {
	ParticleCount int        `toml:"particle_count"`
	Seed          uint32     `toml:"seed"`
	Workers       int        `toml:"workers"`
	Gravity       [3]float32 `toml:"gravity"`
	Damping       float32    `toml:"damping"`
	MinLife       float32    `toml:"min_life"`
	MaxLife       float32    `toml:"max_life"`
	EmitRadius    float32    `toml:"emit_radius"`
	MinSpeed      float32    `toml:"min_speed"`
	MaxSpeed      float32    `toml:"max_speed"`
	MinSize       float32    `toml:"min_size"`
	MaxSize       float32    `toml:"max_size"`
	ColorEnabled  bool       `toml:"color_enabled"`
}

type TessConfig struct {
	BaseLevel          float32 `toml:"base_level"`
	DistanceMultiplier float32 `toml:"distance_multiplier"`
	MaxLevel           float32 `toml:"max_level"`
}

type PostConfig struct {
	Exposure         float32 `toml:"exposure"`
	Contrast         float32 `toml:"contrast"`
	Saturation       float32 `toml:"saturation"`
	VignetteStrength float32 `toml:"vignette_strength"`
}

func DefaultConfig() Config {
	return Config{
		LogPrefix: "pyrite",
		Geometry:  GeometryConfig{ReserveRatio: 2.0},
		Sim: SimConfig{
			ParticleCount: 4096,
			Seed:          1,
			Gravity:       [3]float32{0, -9.81, 0},
			Damping:       0.99,
			MinLife:       1,
			MaxLife:       4,
			EmitRadius:    0.5,
			MinSpeed:      0.5,
			MaxSpeed:      2,
			MinSize:       0.01,
			MaxSize:       0.05,
		},
		Tess: TessConfig{
			BaseLevel:          8,
			DistanceMultiplier: 4,
			MaxLevel:           64,
		},
		Post: PostConfig{
			Contrast:   1,
			Saturation: 1,
		},
	}
}

// LoadConfig reads a TOML file over the defaults, so partial files work.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return cfg, nil
}

// SimParams maps the configured emitter to per-step parameters.
func (c SimConfig) SimParams(dt float32) sim.Params {
	return sim.Params{
		DeltaTime:    dt,
		Gravity:      mgl32.Vec3{c.Gravity[0], c.Gravity[1], c.Gravity[2]},
		Damping:      c.Damping,
		MinLife:      c.MinLife,
		MaxLife:      c.MaxLife,
		EmitRadius:   c.EmitRadius,
		MinSpeed:     c.MinSpeed,
		MaxSpeed:     c.MaxSpeed,
		MinSize:      c.MinSize,
		MaxSize:      c.MaxSize,
		ColorEnabled: c.ColorEnabled,
	}
}

// TessParams binds the configured levels to a viewer position.
func (c TessConfig) TessParams(viewer mgl32.Vec3) tess.Params {
	return tess.Params{
		BaseLevel:          c.BaseLevel,
		DistanceMultiplier: c.DistanceMultiplier,
		MaxLevel:           c.MaxLevel,
		Viewer:             viewer,
	}
}

// PostParams binds the configured grade to a target resolution.
func (c PostConfig) PostParams(w, h int) post.Params {
	return post.Params{
		Exposure:         c.Exposure,
		Contrast:         c.Contrast,
		Saturation:       c.Saturation,
		VignetteStrength: c.VignetteStrength,
		Width:            w,
		Height:           h,
	}
}
