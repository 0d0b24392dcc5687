// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Camera     CameraConfig     `yaml:"camera"`
	Wind       WindConfig       `yaml:"wind"`
	Plume      PlumeConfig      `yaml:"plume"`
	Emission   EmissionConfig   `yaml:"emission"`
	Mask       MaskConfig       `yaml:"mask"`
	Picking    PickingConfig    `yaml:"picking"`
	Plants     PlantsConfig     `yaml:"plants"`
	Projection ProjectionConfig `yaml:"projection"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Audio      AudioConfig      `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// WorldConfig describes the map plane the plants and wind samples live on.
type WorldConfig struct {
	AspectRatio float64 `yaml:"aspect_ratio"` // map image width / height
	Scale       float64 `yaml:"scale"`        // half-height of the plane
	MapImage    string  `yaml:"map_image"`    // optional texture path
}

// CameraConfig holds the initial fly camera state.
type CameraConfig struct {
	Position         [3]float64 `yaml:"position"`
	Yaw              float64    `yaml:"yaw"`   // degrees
	Pitch            float64    `yaml:"pitch"` // degrees
	Fov              float64    `yaml:"fov"`   // vertical, degrees
	Near             float64    `yaml:"near"`
	Far              float64    `yaml:"far"`
	MoveSpeed        float64    `yaml:"move_speed"`
	FastMoveSpeed    float64    `yaml:"fast_move_speed"`
	MouseSensitivity float64    `yaml:"mouse_sensitivity"`
}

// WindConfig holds wind field query parameters.
type WindConfig struct {
	BaseRadius    float64 `yaml:"base_radius"`    // influence radius of a low-band sample
	DisplayHeight float64 `yaml:"display_height"` // y at which arrows are drawn
	LowThreshold  float64 `yaml:"low_threshold"`  // speed < this is the low band
	HighThreshold float64 `yaml:"high_threshold"` // speed >= this is the high band
	UseIndex      bool    `yaml:"use_index"`      // R-tree instead of a linear scan
}

// PlumeConfig holds particle advection parameters.
type PlumeConfig struct {
	Capacity           int     `yaml:"capacity"`
	Transfer           float64 `yaml:"transfer"`            // wind speed -> particle speed
	Blend              float64 `yaml:"blend"`               // lerp factor toward the wind target per step
	MinDistance        float64 `yaml:"min_distance"`        // distance floor before squaring
	InfluenceFalloff   float64 `yaml:"influence_falloff"`   // denominator offset
	InfluenceThreshold float64 `yaml:"influence_threshold"` // weights below this are ignored
	ReleaseHeight      float64 `yaml:"release_height"`      // emission height above the plant
}

// EmissionConfig holds burst shaping parameters.
type EmissionConfig struct {
	PowerNorm  float64    `yaml:"power_norm"`   // power at which t saturates to 1
	CountPerMW float64    `yaml:"count_per_mw"` // particles per MW
	Jitter     [3]float64 `yaml:"jitter"`       // position jitter half-widths
	DirJitter  [3]float64 `yaml:"dir_jitter"`   // direction jitter half-widths
	MinSpeed   float64    `yaml:"min_speed"`
	MaxSpeed   float64    `yaml:"max_speed"`
}

// MaskConfig holds contamination raster parameters.
type MaskConfig struct {
	Width        int        `yaml:"width"`
	Height       int        `yaml:"height"`
	DepositAlpha float64    `yaml:"deposit_alpha"` // footprint alpha at full intensity
	MaxIntensity float64    `yaml:"max_intensity"` // intensity mapped to 1.0
	Color        [3]float64 `yaml:"color"`         // footprint color, 0..1
}

// PickingConfig holds plant bounding box dimensions.
type PickingConfig struct {
	HalfExtent float64 `yaml:"half_extent"`
	Height     float64 `yaml:"height"`
}

// PlantsConfig holds the runtime power adjustment range.
type PlantsConfig struct {
	MinPower     float64 `yaml:"min_power"`
	MaxPower     float64 `yaml:"max_power"`
	DefaultPower float64 `yaml:"default_power"` // used when a dataset row has no power
}

// Anchor ties a geographic coordinate to a world position.
type Anchor struct {
	Lon float64 `yaml:"lon"`
	Lat float64 `yaml:"lat"`
	X   float64 `yaml:"x"`
	Z   float64 `yaml:"z"`
}

// ProjectionConfig holds the geographic calibration anchors.
type ProjectionConfig struct {
	AnchorA Anchor `yaml:"anchor_a"`
	AnchorB Anchor `yaml:"anchor_b"`
}

// PhysicsConfig holds the fixed headless timestep.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// AudioConfig holds explosion cue settings.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MapHalfWidth  float64 // Scale * AspectRatio
	MapHalfHeight float64 // Scale
	ScreenW32     float32
	ScreenH32     float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects configurations the simulation cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Plume.Capacity <= 0:
		return fmt.Errorf("%w: plume.capacity must be positive, got %d", ErrInvalid, c.Plume.Capacity)
	case c.Mask.Width <= 0 || c.Mask.Height <= 0:
		return fmt.Errorf("%w: mask resolution must be positive, got %dx%d", ErrInvalid, c.Mask.Width, c.Mask.Height)
	case c.World.Scale <= 0 || c.World.AspectRatio <= 0:
		return fmt.Errorf("%w: world.scale and world.aspect_ratio must be positive", ErrInvalid)
	case c.Wind.BaseRadius <= 0:
		return fmt.Errorf("%w: wind.base_radius must be positive", ErrInvalid)
	case c.Wind.LowThreshold > c.Wind.HighThreshold:
		return fmt.Errorf("%w: wind.low_threshold above wind.high_threshold", ErrInvalid)
	case c.Plume.Blend < 0 || c.Plume.Blend > 1:
		return fmt.Errorf("%w: plume.blend must be in [0, 1], got %g", ErrInvalid, c.Plume.Blend)
	case c.Plume.MinDistance <= 0:
		return fmt.Errorf("%w: plume.min_distance must be positive", ErrInvalid)
	case c.Emission.PowerNorm <= 0:
		return fmt.Errorf("%w: emission.power_norm must be positive", ErrInvalid)
	case c.Emission.MinSpeed > c.Emission.MaxSpeed:
		return fmt.Errorf("%w: emission.min_speed above emission.max_speed", ErrInvalid)
	case c.Plants.MinPower > c.Plants.MaxPower:
		return fmt.Errorf("%w: plants.min_power above plants.max_power", ErrInvalid)
	case c.Projection.AnchorA.Lon == c.Projection.AnchorB.Lon || c.Projection.AnchorA.Lat == c.Projection.AnchorB.Lat:
		return fmt.Errorf("%w: projection anchors must differ in both lon and lat", ErrInvalid)
	case c.Physics.DT <= 0:
		return fmt.Errorf("%w: physics.dt must be positive", ErrInvalid)
	case c.Telemetry.StatsWindow <= 0:
		return fmt.Errorf("%w: telemetry.stats_window must be positive", ErrInvalid)
	case c.Telemetry.BookmarkHistorySize < 1:
		return fmt.Errorf("%w: telemetry.bookmark_history_size must be positive, got %d", ErrInvalid, c.Telemetry.BookmarkHistorySize)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MapHalfWidth = c.World.Scale * c.World.AspectRatio
	c.Derived.MapHalfHeight = c.World.Scale
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
