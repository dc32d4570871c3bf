package config

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tabkit/tabkit/pkg/errors"
)

// Setter applies one named option value to a config.
type Setter func(cfg *Config, value string) error

var (
	settersMu sync.RWMutex
	setters   = make(map[string]Setter)
)

// RegisterOption binds a named option to its setter. Later
// registrations replace earlier ones.
func RegisterOption(name string, s Setter) {
	settersMu.Lock()
	defer settersMu.Unlock()
	setters[name] = s
}

// OptionNames returns the registered option names, sorted.
func OptionNames() []string {
	settersMu.RLock()
	defer settersMu.RUnlock()

	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetOption applies one named override. Unknown names are a hard error
// carrying the known option names.
func (m *Manager) SetOption(name, value string) error {
	settersMu.RLock()
	s, ok := setters[name]
	settersMu.RUnlock()

	if !ok {
		return errors.Newf(errors.CodeUnknownOption, "unknown option: %s", name).
			WithContext("available", OptionNames())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return s(m.config, value)
}

// Apply parses key=value pairs and applies each in order.
func (m *Manager) Apply(pairs []string) error {
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return errors.Newf(errors.CodeUnknownOption, "malformed option %q, want key=value", pair)
		}
		if err := m.SetOption(strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	return nil
}

func stringSetter(apply func(*Config, string)) Setter {
	return func(cfg *Config, value string) error {
		apply(cfg, value)
		return nil
	}
}

func intSetter(apply func(*Config, int)) Setter {
	return func(cfg *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, errors.CodeConfig, "parse int %q", value)
		}
		apply(cfg, n)
		return nil
	}
}

func boolSetter(apply func(*Config, bool)) Setter {
	return func(cfg *Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, errors.CodeConfig, "parse bool %q", value)
		}
		apply(cfg, b)
		return nil
	}
}

func durationSetter(apply func(*Config, time.Duration)) Setter {
	return func(cfg *Config, value string) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, errors.CodeConfig, "parse duration %q", value)
		}
		apply(cfg, d)
		return nil
	}
}

func enumSetter(allowed []string, apply func(*Config, string)) Setter {
	return func(cfg *Config, value string) error {
		for _, a := range allowed {
			if value == a {
				apply(cfg, value)
				return nil
			}
		}
		return errors.Newf(errors.CodeConfig, "value %q not one of %v", value, allowed)
	}
}

func init() {
	RegisterOption("container.delimiter", stringSetter(func(c *Config, v string) { c.Container.Delimiter = v }))
	RegisterOption("container.header_index", intSetter(func(c *Config, v int) { c.Container.HeaderIndex = v }))
	RegisterOption("container.orientation", enumSetter([]string{"rows", "columns"},
		func(c *Config, v string) { c.Container.Orientation = v }))
	RegisterOption("export.compression", enumSetter([]string{"snappy", "gzip", "zstd", "lz4", "none"},
		func(c *Config, v string) { c.Export.Compression = v }))
	RegisterOption("snapshot.backend", enumSetter([]string{"local", "redis", "s3"},
		func(c *Config, v string) { c.Snapshot.Backend = v }))
	RegisterOption("snapshot.dir", stringSetter(func(c *Config, v string) { c.Snapshot.Dir = v }))
	RegisterOption("snapshot.interval", durationSetter(func(c *Config, v time.Duration) { c.Snapshot.Interval = v }))
	RegisterOption("snapshot.redis.addr", stringSetter(func(c *Config, v string) { c.Snapshot.Redis.Addr = v }))
	RegisterOption("snapshot.redis.db", intSetter(func(c *Config, v int) { c.Snapshot.Redis.DB = v }))
	RegisterOption("snapshot.redis.ttl", durationSetter(func(c *Config, v time.Duration) { c.Snapshot.Redis.TTL = v }))
	RegisterOption("snapshot.s3.bucket", stringSetter(func(c *Config, v string) { c.Snapshot.S3.Bucket = v }))
	RegisterOption("snapshot.s3.prefix", stringSetter(func(c *Config, v string) { c.Snapshot.S3.Prefix = v }))
	RegisterOption("snapshot.s3.region", stringSetter(func(c *Config, v string) { c.Snapshot.S3.Region = v }))
	RegisterOption("snapshot.s3.endpoint", stringSetter(func(c *Config, v string) { c.Snapshot.S3.Endpoint = v }))
	RegisterOption("snapshot.s3.path_style", boolSetter(func(c *Config, v bool) { c.Snapshot.S3.PathStyle = v }))
	RegisterOption("watch.debounce", durationSetter(func(c *Config, v time.Duration) { c.Watch.Debounce = v }))
	RegisterOption("telemetry.enabled", boolSetter(func(c *Config, v bool) { c.Telemetry.Enabled = v }))
	RegisterOption("telemetry.endpoint", stringSetter(func(c *Config, v string) { c.Telemetry.Endpoint = v }))
}
