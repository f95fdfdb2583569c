// Package config loads the simulation settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/conga/internal/core/conga"
	"github.com/zeusync/conga/internal/core/observability/log"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Sim       SimConfig       `yaml:"sim"`
	Scene     SceneConfig     `yaml:"scene"`
	View      ViewConfig      `yaml:"view"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Terminal  TerminalConfig  `yaml:"terminal"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SimConfig struct {
	MoveSpeed float64 `yaml:"move_speed"`
	// MaxDelta caps the time step of a single frame, in seconds.
	MaxDelta         float64 `yaml:"max_delta"`
	TickRate         int     `yaml:"tick_rate"`
	TurnDivisor      float64 `yaml:"turn_divisor"`
	MaxTimeOffScreen float64 `yaml:"max_time_off_screen"`
	NoteIntervalMin  float64 `yaml:"note_interval_min"`
	NoteIntervalMax  float64 `yaml:"note_interval_max"`
	NoteLifetime     int     `yaml:"note_lifetime"`
	NoteSpeed        float64 `yaml:"note_speed"`
	NoteRise         float64 `yaml:"note_rise"`
	NoteJitter       float64 `yaml:"note_jitter"`
	Seed             uint64  `yaml:"seed"`
}

type ModelConfig struct {
	Size float64 `yaml:"size"`
}

type SceneConfig struct {
	Animals     int                    `yaml:"animals"`
	Player      string                 `yaml:"player"`
	Herd        []string               `yaml:"herd"`
	Models      map[string]ModelConfig `yaml:"models"`
	SpiralStart float64                `yaml:"spiral_start"`
	SpiralArc   float64                `yaml:"spiral_arc"`
}

// ViewConfig is the visible rectangle of the XZ plane.
type ViewConfig struct {
	MinX float64 `yaml:"min_x"`
	MaxX float64 `yaml:"max_x"`
	MinZ float64 `yaml:"min_z"`
	MaxZ float64 `yaml:"max_z"`
}

type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	// Every publishes one snapshot per this many frames.
	Every int `yaml:"every"`
}

type TerminalConfig struct {
	Enabled bool `yaml:"enabled"`
	// KeyHold is how long a key counts as held after its last press event.
	KeyHold time.Duration `yaml:"key_hold"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Sim: SimConfig{
			MoveSpeed:        16,
			MaxDelta:         1.0 / 20,
			TickRate:         60,
			TurnDivisor:      4,
			MaxTimeOffScreen: 3,
			NoteIntervalMin:  0.5,
			NoteIntervalMax:  1,
			NoteLifetime:     60,
			NoteSpeed:        10,
			NoteRise:         5,
			NoteJitter:       0.2,
			Seed:             1,
		},
		Scene: SceneConfig{
			Animals: 28,
			Player:  "knight",
			Herd:    []string{"pig", "cow", "llama", "pug", "sheep", "zebra", "horse"},
			Models: map[string]ModelConfig{
				"knight": {Size: 5},
				"pig":    {Size: 3.5},
				"cow":    {Size: 5},
				"llama":  {Size: 4.5},
				"pug":    {Size: 2.5},
				"sheep":  {Size: 3.5},
				"zebra":  {Size: 5},
				"horse":  {Size: 5.5},
			},
			SpiralStart: 10,
			SpiralArc:   10,
		},
		View: ViewConfig{MinX: -80, MaxX: 80, MinZ: -45, MaxZ: 45},
		Telemetry: TelemetryConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8088",
			Every:   6,
		},
		Terminal: TerminalConfig{
			Enabled: false,
			KeyHold: 150 * time.Millisecond,
		},
	}
}

// Load decodes YAML on top of Default and validates the result.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile is Load for a file path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate reports every problem at once, wrapped in ErrInvalid.
func (c *Config) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	_, err := log.ParseLevel(c.Log.Level)
	check(err == nil, "log.level %q is unknown", c.Log.Level)

	check(c.Sim.MoveSpeed > 0, "sim.move_speed must be positive")
	check(c.Sim.MaxDelta > 0, "sim.max_delta must be positive")
	check(c.Sim.TickRate > 0, "sim.tick_rate must be positive")
	check(c.Sim.TurnDivisor > 0, "sim.turn_divisor must be positive")
	check(c.Sim.MaxTimeOffScreen > 0, "sim.max_time_off_screen must be positive")
	check(c.Sim.NoteIntervalMin > 0, "sim.note_interval_min must be positive")
	check(c.Sim.NoteIntervalMax >= c.Sim.NoteIntervalMin, "sim.note_interval_max is below note_interval_min")
	check(c.Sim.NoteLifetime > 0, "sim.note_lifetime must be positive")

	check(c.Scene.Animals >= 0, "scene.animals must not be negative")
	check(c.Scene.SpiralStart > 0, "scene.spiral_start must be positive")
	check(c.Scene.SpiralArc > 0, "scene.spiral_arc must be positive")
	_, ok := c.Scene.Models[c.Scene.Player]
	check(ok, "scene.player model %q is not in scene.models", c.Scene.Player)
	check(c.Scene.Animals == 0 || len(c.Scene.Herd) > 0, "scene.herd is empty")
	for _, name := range c.Scene.Herd {
		m, ok := c.Scene.Models[name]
		check(ok, "scene.herd model %q is not in scene.models", name)
		check(!ok || m.Size > 0, "scene.models.%s.size must be positive", name)
	}

	check(c.View.MinX < c.View.MaxX, "view.min_x must be below view.max_x")
	check(c.View.MinZ < c.View.MaxZ, "view.min_z must be below view.max_z")

	check(!c.Telemetry.Enabled || c.Telemetry.Addr != "", "telemetry.addr is required when telemetry is enabled")
	check(c.Telemetry.Every > 0, "telemetry.every must be positive")
	check(c.Terminal.KeyHold > 0, "terminal.key_hold must be positive")

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
}

// LogLevel is the parsed log level; Validate guarantees it parses.
func (c *Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

// FrameInterval is the wall time between two frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Sim.TickRate)
}

func (c *Config) PlayerConfig() conga.PlayerConfig {
	return conga.PlayerConfig{
		MoveSpeed:        c.Sim.MoveSpeed,
		TurnDivisor:      c.Sim.TurnDivisor,
		MaxTimeOffScreen: c.Sim.MaxTimeOffScreen,
		NoteIntervalMin:  c.Sim.NoteIntervalMin,
		NoteIntervalMax:  c.Sim.NoteIntervalMax,
		Note: conga.NoteConfig{
			Lifetime: c.Sim.NoteLifetime,
			Speed:    c.Sim.NoteSpeed,
			Rise:     c.Sim.NoteRise,
			Jitter:   c.Sim.NoteJitter,
		},
		Seed: c.Sim.Seed,
	}
}

func (c *Config) SceneConfig() conga.SceneConfig {
	herd := make([]conga.Model, 0, len(c.Scene.Herd))
	for _, name := range c.Scene.Herd {
		herd = append(herd, conga.Model{Name: name, Size: c.Scene.Models[name].Size})
	}
	return conga.SceneConfig{
		MoveSpeed:   c.Sim.MoveSpeed,
		Player:      c.PlayerConfig(),
		PlayerModel: conga.Model{Name: c.Scene.Player, Size: c.Scene.Models[c.Scene.Player].Size},
		Herd:        herd,
		Animals:     c.Scene.Animals,
		SpiralStart: c.Scene.SpiralStart,
		SpiralArc:   c.Scene.SpiralArc,
		Seed:        c.Sim.Seed,
	}
}
