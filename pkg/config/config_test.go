package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	c, err := Decode(New(nil))
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, c.SaveDebounce)
	assert.Equal(t, time.Second/60, c.FrameInterval)
	assert.Equal(t, "62", c.Theme.Accent)
	assert.Equal(t, filepath.Join(Dir(), "notes.db"), c.StorePath)
}

func TestFileEnvAndFlags(t *testing.T) {
	path := writeFile(t, `
store_path: /tmp/from-file.db
save_debounce: 2s
theme:
  accent: "#ff00ff"
`)
	t.Setenv("NOTETREE_FRAME_INTERVAL", "50ms")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("store", "", "")
	flags.String("log-file", "", "")
	require.NoError(t, flags.Parse([]string{"--log-file", "/tmp/x.log"}))

	c, err := Load(New(flags), path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-file.db", c.StorePath, "unset flags do not override the file")
	assert.Equal(t, 2*time.Second, c.SaveDebounce)
	assert.Equal(t, 50*time.Millisecond, c.FrameInterval)
	assert.Equal(t, "/tmp/x.log", c.LogFile)
	assert.Equal(t, "#ff00ff", c.Theme.Accent)
	assert.Equal(t, "241", c.Theme.Muted)
}

func TestExplicitMissingFileIsAnError(t *testing.T) {
	_, err := Load(New(nil), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", Config{StorePath: "x", FrameInterval: time.Millisecond}, true},
		{"no store", Config{FrameInterval: time.Millisecond}, false},
		{"negative debounce", Config{StorePath: "x", SaveDebounce: -1, FrameInterval: time.Millisecond}, false},
		{"zero frame", Config{StorePath: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
