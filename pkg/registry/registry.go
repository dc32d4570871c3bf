// Package registry provides a central registry for format Sources,
// Sinks, and tree codecs. This enables runtime format selection without
// if/else chains in main code.
package registry

import (
	"strings"
	"sync"

	"github.com/tabkit/tabkit/pkg/adapters"
	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/tree"
	"github.com/tabkit/tabkit/pkg/util"
)

// Canonical format names.
const (
	FormatCSV        = "csv"
	FormatProperties = "properties"
	FormatXLSX       = "xlsx"
	FormatParquet    = "parquet"
	FormatJSON       = "json"
	FormatYAML       = "yaml"
	FormatXML        = "xml"
)

// SourceFactory creates a new Source instance.
type SourceFactory func() adapters.Source

// SinkFactory creates a new Sink instance.
type SinkFactory func() adapters.Sink

// TreeCodec reads and writes one tree-shaped format.
type TreeCodec struct {
	Read  func(path string) (*tree.Tree, error)
	Write func(t *tree.Tree, path string) error
}

// Registry holds all registered adapters.
type Registry struct {
	mu sync.RWMutex

	sources map[string]SourceFactory
	sinks   map[string]SinkFactory
	trees   map[string]TreeCodec

	// Format to extension mapping
	formatExtensions map[string][]string
}

// Global default registry
var defaultRegistry = NewRegistry()

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources:          make(map[string]SourceFactory),
		sinks:            make(map[string]SinkFactory),
		trees:            make(map[string]TreeCodec),
		formatExtensions: make(map[string][]string),
	}
}

// RegisterSource adds a source factory to the registry.
func (r *Registry) RegisterSource(name string, factory SourceFactory, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sources[name] = factory
	if len(extensions) > 0 {
		r.formatExtensions[name] = extensions
	}
}

// RegisterSink adds a sink factory to the registry.
func (r *Registry) RegisterSink(name string, factory SinkFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sinks[name] = factory
}

// RegisterTree adds a tree codec to the registry.
func (r *Registry) RegisterTree(name string, codec TreeCodec, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trees[name] = codec
	if len(extensions) > 0 {
		r.formatExtensions[name] = extensions
	}
}

// GetSource returns a source for the given format.
func (r *Registry) GetSource(format string) (adapters.Source, error) {
	r.mu.RLock()
	factory, ok := r.sources[format]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Newf(errors.CodeUnknownFormat, "unknown source format: %s", format)
	}
	return factory(), nil
}

// GetSink returns a sink for the given format.
func (r *Registry) GetSink(format string) (adapters.Sink, error) {
	r.mu.RLock()
	factory, ok := r.sinks[format]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Newf(errors.CodeUnknownFormat, "unknown sink format: %s", format)
	}
	return factory(), nil
}

// GetTree returns the tree codec for the given format.
func (r *Registry) GetTree(format string) (TreeCodec, error) {
	r.mu.RLock()
	codec, ok := r.trees[format]
	r.mu.RUnlock()

	if !ok {
		return TreeCodec{}, errors.Newf(errors.CodeUnknownFormat, "unknown tree format: %s", format)
	}
	return codec, nil
}

// IsTreeFormat reports whether the format has a tree codec.
func (r *Registry) IsTreeFormat(format string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.trees[format]
	return ok
}

// DetectFormat determines the format from a file path. Compression
// extensions are stripped first, so "events.csv.gz" detects as csv.
func (r *Registry) DetectFormat(path string) string {
	ext := strings.TrimPrefix(util.BaseFormat(path), ".")

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Check each registered format's extensions
	for format, extensions := range r.formatExtensions {
		for _, e := range extensions {
			if e == ext {
				return format
			}
		}
	}

	// Fallback: use extension as format
	return ext
}

// ListSources returns all registered source formats.
func (r *Registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.sources))
	for name := range r.sources {
		formats = append(formats, name)
	}
	return formats
}

// ListSinks returns all registered sink formats.
func (r *Registry) ListSinks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		formats = append(formats, name)
	}
	return formats
}

// ListTrees returns all registered tree formats.
func (r *Registry) ListTrees() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.trees))
	for name := range r.trees {
		formats = append(formats, name)
	}
	return formats
}

// --- Global registry functions ---

// RegisterSource adds a source to the default registry.
func RegisterSource(name string, factory SourceFactory, extensions ...string) {
	defaultRegistry.RegisterSource(name, factory, extensions...)
}

// RegisterSink adds a sink to the default registry.
func RegisterSink(name string, factory SinkFactory) {
	defaultRegistry.RegisterSink(name, factory)
}

// RegisterTree adds a tree codec to the default registry.
func RegisterTree(name string, codec TreeCodec, extensions ...string) {
	defaultRegistry.RegisterTree(name, codec, extensions...)
}

// GetSource returns a source from the default registry.
func GetSource(format string) (adapters.Source, error) {
	return defaultRegistry.GetSource(format)
}

// GetSink returns a sink from the default registry.
func GetSink(format string) (adapters.Sink, error) {
	return defaultRegistry.GetSink(format)
}

// GetTree returns a tree codec from the default registry.
func GetTree(format string) (TreeCodec, error) {
	return defaultRegistry.GetTree(format)
}

// IsTreeFormat reports tree formats against the default registry.
func IsTreeFormat(format string) bool {
	return defaultRegistry.IsTreeFormat(format)
}

// DetectFormat determines format from the default registry.
func DetectFormat(path string) string {
	return defaultRegistry.DetectFormat(path)
}

// ListSources lists sources from the default registry.
func ListSources() []string {
	return defaultRegistry.ListSources()
}

// ListSinks lists sinks from the default registry.
func ListSinks() []string {
	return defaultRegistry.ListSinks()
}

// ListTrees lists tree formats from the default registry.
func ListTrees() []string {
	return defaultRegistry.ListTrees()
}

// Default returns the default registry for direct access.
func Default() *Registry {
	return defaultRegistry
}
