package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the complete pkgtool configuration.
type Config struct {
	Backends BackendsConfig `toml:"backends"`
	Timeouts TimeoutsConfig `toml:"timeouts"`
	Cache    CacheConfig    `toml:"cache"`
	UI       UIConfig       `toml:"ui"`
	History  HistoryConfig  `toml:"history"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

// BackendsConfig controls which backends are probed and targeted.
type BackendsConfig struct {
	// Disabled lists backend tags that are never probed.
	Disabled []string `toml:"disabled"`

	// Default is the preferred target for mutations when the command
	// names none. Empty means suggest from the host platform.
	Default string `toml:"default"`
}

// TimeoutsConfig bounds individual backend calls. Values use Go
// duration syntax ("30s", "10m").
type TimeoutsConfig struct {
	// Read applies to search, update listing and installed listing.
	Read string `toml:"read"`

	// Mutate applies to install, remove and system updates, which
	// legitimately run for minutes.
	Mutate string `toml:"mutate"`
}

// CacheConfig controls the per-backend result cache.
type CacheConfig struct {
	TTL      string `toml:"ttl"`
	Disabled bool   `toml:"disabled"`
}

// UIConfig contains terminal output settings.
type UIConfig struct {
	// Color enables colored output. NO_COLOR still wins.
	Color bool `toml:"color"`

	// Confirm prompts before mutations.
	Confirm bool `toml:"confirm"`

	// Spinner shows progress while subprocesses run.
	Spinner bool `toml:"spinner"`
}

// HistoryConfig controls the operation history store.
type HistoryConfig struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

// SnapshotConfig controls snapshots captured around mutations.
type SnapshotConfig struct {
	// Auto captures a snapshot before every mutating command.
	Auto         bool `toml:"auto"`
	MaxSnapshots int  `toml:"max_snapshots"`
}

// Default returns the canonical default configuration.
func Default() *Config {
	return &Config{
		Timeouts: TimeoutsConfig{
			Read:   "30s",
			Mutate: "10m",
		},
		Cache: CacheConfig{
			TTL: "30s",
		},
		UI: UIConfig{
			Color:   true,
			Confirm: true,
			Spinner: true,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 500,
		},
		Snapshot: SnapshotConfig{
			Auto:         true,
			MaxSnapshots: 50,
		},
	}
}

// Load loads the configuration from the default path. A missing file
// yields the defaults.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from a specific path. A missing
// file yields the defaults; a present file is decoded over them, so
// partial files only override what they name.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if _, err := cfg.Durations(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration to a specific path, creating the
// parent directory as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// Durations is the parsed form of every duration-valued setting.
type Durations struct {
	Read     time.Duration
	Mutate   time.Duration
	CacheTTL time.Duration // zero when the cache is disabled
}

// Durations parses the duration-valued settings, naming the offending
// key on failure.
func (c *Config) Durations() (Durations, error) {
	var d Durations
	var err error

	if d.Read, err = parseDuration("timeouts.read", c.Timeouts.Read); err != nil {
		return Durations{}, err
	}
	if d.Mutate, err = parseDuration("timeouts.mutate", c.Timeouts.Mutate); err != nil {
		return Durations{}, err
	}
	if c.Cache.Disabled {
		return d, nil
	}
	if d.CacheTTL, err = parseDuration("cache.ttl", c.Cache.TTL); err != nil {
		return Durations{}, err
	}
	return d, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: invalid duration %q", key, value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s: duration must be positive, got %q", key, value)
	}
	return d, nil
}

// BackendDisabled reports whether tag is listed in backends.disabled.
func (c *Config) BackendDisabled(tag string) bool {
	for _, d := range c.Backends.Disabled {
		if d == tag {
			return true
		}
	}
	return false
}

// ShouldUseColor reports whether output should be colored. The
// NO_COLOR environment variable overrides the config.
func (c *Config) ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return c.UI.Color
}
