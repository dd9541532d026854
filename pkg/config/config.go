// Package config loads settings from a YAML file, NOTETREE_* environment
// variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const appName = "float-notetree"

// Theme names terminal colours (ANSI numbers or hex) for the painter.
type Theme struct {
	Accent string `mapstructure:"accent"`
	Muted  string `mapstructure:"muted"`
	Error  string `mapstructure:"error"`
}

// Config is the resolved configuration.
type Config struct {
	StorePath     string        `mapstructure:"store_path"`
	SaveDebounce  time.Duration `mapstructure:"save_debounce"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	LogFile       string        `mapstructure:"log_file"`
	Theme         Theme         `mapstructure:"theme"`
}

// Dir returns the directory holding the config file and default store.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, appName)
}

// New returns a viper instance with defaults and environment binding set
// up. flags, if non-nil, are bound by their names with dashes replaced.
func New(flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	v.SetDefault("store_path", filepath.Join(Dir(), "notes.db"))
	v.SetDefault("save_debounce", 500*time.Millisecond)
	v.SetDefault("frame_interval", time.Second/60)
	v.SetDefault("log_file", "")
	v.SetDefault("theme.accent", "62")
	v.SetDefault("theme.muted", "241")
	v.SetDefault("theme.error", "196")

	v.SetEnvPrefix("NOTETREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bind := map[string]string{"store": "store_path", "log-file": "log_file"}
		for flag, key := range bind {
			if f := flags.Lookup(flag); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}
	return v
}

// Load reads the config file into v and decodes it. An empty path searches
// Dir() for config.yaml and tolerates its absence; an explicit path must
// exist.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return Decode(v)
}

// Decode unmarshals and validates the current settings of v.
func Decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	if c.StorePath == "" {
		return errors.New("config: store_path is empty")
	}
	if c.SaveDebounce < 0 {
		return fmt.Errorf("config: save_debounce %v is negative", c.SaveDebounce)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("config: frame_interval %v must be positive", c.FrameInterval)
	}
	return nil
}

// Watch calls fn with the new configuration whenever the config file
// changes. Decoding errors are passed to onErr and the change is skipped.
func Watch(v *viper.Viper, fn func(*Config), onErr func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		c, err := Decode(v)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		fn(c)
	})
	v.WatchConfig()
}
