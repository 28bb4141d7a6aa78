package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config carries app-level settings. Everything has a working default; the
// config file is optional.
type Config struct {
	// DataDir is the root of the durable (primary) store and the sqlite
	// backup database.
	DataDir string
	// DebounceMs is the search debounce in milliseconds.
	DebounceMs int
	// Theme optionally forces "light" or "dark" (empty: persisted slot or
	// system preference).
	Theme string
	// GuardInterval is how often the activity guard re-checks eviction risk.
	GuardInterval time.Duration
}

// Load reads .autotodo.yaml (cwd, then home) and AUTOTODO_* env overrides.
// A missing config file is not an error.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName(".autotodo")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("AUTOTODO")
	v.AutomaticEnv()

	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("debounce_ms", 150)
	v.SetDefault("theme", "")
	v.SetDefault("guard_interval", "1h")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	cfg := Config{
		DataDir:    v.GetString("data_dir"),
		DebounceMs: v.GetInt("debounce_ms"),
		Theme:      v.GetString("theme"),
	}
	if d, err := time.ParseDuration(v.GetString("guard_interval")); err == nil {
		cfg.GuardInterval = d
	}
	return cfg, nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "autotodo")
	}
	return ".autotodo"
}
