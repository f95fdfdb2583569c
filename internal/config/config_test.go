package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/conga/internal/core/observability/log"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, log.LevelInfo, c.LogLevel())
	assert.Equal(t, time.Second/60, c.FrameInterval())
}

func TestLoadOverridesDefaults(t *testing.T) {
	src := `
log:
  level: debug
sim:
  move_speed: 20
  seed: 9
scene:
  animals: 3
  herd: [pig]
  models:
    pig: {size: 4}
terminal:
  key_hold: 250ms
`
	c, err := Load(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, log.LevelDebug, c.LogLevel())
	assert.Equal(t, 20.0, c.Sim.MoveSpeed)
	assert.Equal(t, 1.0/20, c.Sim.MaxDelta, "untouched keys keep their default")
	assert.Equal(t, []string{"pig"}, c.Scene.Herd)
	assert.Equal(t, 4.0, c.Scene.Models["pig"].Size)
	assert.Equal(t, 5.0, c.Scene.Models["knight"].Size, "model maps merge")
	assert.Equal(t, 250*time.Millisecond, c.Terminal.KeyHold)

	scene := c.SceneConfig()
	assert.Equal(t, 3, scene.Animals)
	require.Len(t, scene.Herd, 1)
	assert.Equal(t, "pig", scene.Herd[0].Name)
	assert.Equal(t, 2.5*2, scene.PlayerModel.Size)
	assert.Equal(t, uint64(9), scene.Seed)
	assert.Equal(t, 20.0, scene.Player.MoveSpeed)
	assert.Equal(t, 60, scene.Player.Note.Lifetime)
}

func TestLoadEmpty(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("sim:\n  warp_speed: 9\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"move speed", func(c *Config) { c.Sim.MoveSpeed = 0 }, "sim.move_speed"},
		{"note interval", func(c *Config) { c.Sim.NoteIntervalMax = 0.1 }, "note_interval_max"},
		{"player model", func(c *Config) { c.Scene.Player = "dragon" }, "scene.player"},
		{"herd model", func(c *Config) { c.Scene.Herd = []string{"unicorn"} }, "unicorn"},
		{"empty herd", func(c *Config) { c.Scene.Herd = nil }, "scene.herd is empty"},
		{"view", func(c *Config) { c.View.MinX = c.View.MaxX }, "view.min_x"},
		{"telemetry", func(c *Config) { c.Telemetry.Enabled = true; c.Telemetry.Addr = "" }, "telemetry.addr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			err := c.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conga.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim:\n  move_speed: 0\n"), 0o644))

	_, err := LoadFile(path)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), path)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conga.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim:\n  move_speed: 16\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(c *Config) { reloaded <- c }, nil)
	}()

	tmp := filepath.Join(dir, "conga.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("sim:\n  move_speed: 24\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case c := <-reloaded:
		assert.Equal(t, 24.0, c.Sim.MoveSpeed)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestSampleConfig(t *testing.T) {
	c, err := LoadFile(filepath.Join("..", "..", "configs", "conga.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, c.Terminal.KeyHold)
	assert.Equal(t, Default().Scene.Herd, c.Scene.Herd)
	assert.Equal(t, time.Second/60, c.FrameInterval())
}
