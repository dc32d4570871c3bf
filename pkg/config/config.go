// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < --set overrides
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tabkit/tabkit/pkg/errors"
)

// Config holds all TabKit configuration.
type Config struct {
	Version int `yaml:"version"`

	Container ContainerConfig `yaml:"container"`
	Export    ExportConfig    `yaml:"export"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Watch     WatchConfig     `yaml:"watch"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ContainerConfig controls container defaults at open time.
type ContainerConfig struct {
	Delimiter   string `yaml:"delimiter"`
	HeaderIndex int    `yaml:"header_index"`
	Orientation string `yaml:"orientation"` // rows | columns
}

// ExportConfig controls default export behavior.
type ExportConfig struct {
	Compression string `yaml:"compression"` // snappy | zstd | gzip | lz4 | none
}

// SnapshotConfig controls container state persistence.
type SnapshotConfig struct {
	Backend  string        `yaml:"backend"` // local | redis | s3
	Dir      string        `yaml:"dir"`
	Interval time.Duration `yaml:"interval"`
	Redis    RedisConfig   `yaml:"redis"`
	S3       S3Config      `yaml:"s3"`
}

// RedisConfig for the Redis snapshot backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// S3Config for the S3 snapshot backend.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PathStyle bool   `yaml:"path_style"`
}

// WatchConfig for live reload.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// TelemetryConfig for optional tracing.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	tabkitDir := filepath.Join(homeDir, ".tabkit")

	return &Config{
		Version: 1,
		Container: ContainerConfig{
			Delimiter:   ";",
			HeaderIndex: 0,
			Orientation: "rows",
		},
		Export: ExportConfig{
			Compression: "snappy",
		},
		Snapshot: SnapshotConfig{
			Backend:  "local",
			Dir:      filepath.Join(tabkitDir, "snapshots"),
			Interval: 30 * time.Second,
			Redis: RedisConfig{
				Addr: "localhost:6379",
				TTL:  24 * time.Hour,
			},
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "localhost:4317",
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // Paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Start with defaults
	m.config = Default()

	// Load from paths in order (later overrides earlier)
	for _, path := range m.getConfigPaths() {
		if err := m.loadFile(path); err != nil {
			// Ignore missing files, but surface errors for existing ones
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	// Override with environment variables
	m.loadEnv()

	return nil
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	// System config
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/tabkit/config.yaml")
	}

	// User config
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".tabkit", "config.yaml"))
	}

	// Project config (current directory)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".tabkit.yaml"))
	}

	return paths
}

// LoadFile loads one config file and merges its non-zero values.
func (m *Manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadFile(path); err != nil {
		return errors.Wrapf(err, errors.CodeConfig, "load %s", path)
	}
	m.paths = append(m.paths, path)
	return nil
}

func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}

	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	// Container
	if src.Container.Delimiter != "" {
		m.config.Container.Delimiter = src.Container.Delimiter
	}
	if src.Container.HeaderIndex != 0 {
		m.config.Container.HeaderIndex = src.Container.HeaderIndex
	}
	if src.Container.Orientation != "" {
		m.config.Container.Orientation = src.Container.Orientation
	}

	// Export
	if src.Export.Compression != "" {
		m.config.Export.Compression = src.Export.Compression
	}

	// Snapshot
	if src.Snapshot.Backend != "" {
		m.config.Snapshot.Backend = src.Snapshot.Backend
	}
	if src.Snapshot.Dir != "" {
		m.config.Snapshot.Dir = src.Snapshot.Dir
	}
	if src.Snapshot.Interval != 0 {
		m.config.Snapshot.Interval = src.Snapshot.Interval
	}
	if src.Snapshot.Redis.Addr != "" {
		m.config.Snapshot.Redis.Addr = src.Snapshot.Redis.Addr
	}
	if src.Snapshot.Redis.Password != "" {
		m.config.Snapshot.Redis.Password = src.Snapshot.Redis.Password
	}
	if src.Snapshot.Redis.DB != 0 {
		m.config.Snapshot.Redis.DB = src.Snapshot.Redis.DB
	}
	if src.Snapshot.Redis.TTL != 0 {
		m.config.Snapshot.Redis.TTL = src.Snapshot.Redis.TTL
	}
	if src.Snapshot.S3.Bucket != "" {
		m.config.Snapshot.S3.Bucket = src.Snapshot.S3.Bucket
	}
	if src.Snapshot.S3.Prefix != "" {
		m.config.Snapshot.S3.Prefix = src.Snapshot.S3.Prefix
	}
	if src.Snapshot.S3.Region != "" {
		m.config.Snapshot.S3.Region = src.Snapshot.S3.Region
	}
	if src.Snapshot.S3.Endpoint != "" {
		m.config.Snapshot.S3.Endpoint = src.Snapshot.S3.Endpoint
	}
	if src.Snapshot.S3.AccessKey != "" {
		m.config.Snapshot.S3.AccessKey = src.Snapshot.S3.AccessKey
	}
	if src.Snapshot.S3.SecretKey != "" {
		m.config.Snapshot.S3.SecretKey = src.Snapshot.S3.SecretKey
	}
	if src.Snapshot.S3.PathStyle {
		m.config.Snapshot.S3.PathStyle = true
	}

	// Watch
	if src.Watch.Debounce != 0 {
		m.config.Watch.Debounce = src.Watch.Debounce
	}

	// Telemetry
	if src.Telemetry.Enabled {
		m.config.Telemetry.Enabled = true
	}
	if src.Telemetry.Endpoint != "" {
		m.config.Telemetry.Endpoint = src.Telemetry.Endpoint
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("TABKIT_DELIMITER"); v != "" {
		m.config.Container.Delimiter = v
	}
	if v := os.Getenv("TABKIT_COMPRESSION"); v != "" {
		m.config.Export.Compression = v
	}
	if v := os.Getenv("TABKIT_SNAPSHOT_DIR"); v != "" {
		m.config.Snapshot.Dir = v
	}
	if v := os.Getenv("TABKIT_REDIS_ADDR"); v != "" {
		m.config.Snapshot.Redis.Addr = v
	}
	if v := os.Getenv("TABKIT_S3_BUCKET"); v != "" {
		m.config.Snapshot.S3.Bucket = v
	}
	if v := os.Getenv("TABKIT_TELEMETRY_ENDPOINT"); v != "" {
		m.config.Telemetry.Endpoint = v
		m.config.Telemetry.Enabled = true
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return errors.Wrap(err, errors.CodeConfig, "resolve home directory")
	}
	return m.SaveFile(filepath.Join(home, ".tabkit", "config.yaml"))
}

// SaveFile writes the current config to path.
func (m *Manager) SaveFile(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.CodeConfig, "create %s", filepath.Dir(path))
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return errors.Wrap(err, errors.CodeConfig, "marshal config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.CodeConfig, "write %s", path)
	}
	return nil
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalManager.Load()
	})
	return globalManager
}
