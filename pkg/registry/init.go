package registry

import (
	"strings"

	"github.com/tabkit/tabkit/pkg/adapters"
	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/filter"
	"github.com/tabkit/tabkit/pkg/tree"
	"github.com/tabkit/tabkit/pkg/util"
)

func init() {
	// Register Sources
	RegisterSource(FormatCSV, func() adapters.Source {
		return adapters.NewCSVSource()
	}, "csv", "txt", "tsv")
	RegisterSource(FormatProperties, func() adapters.Source {
		return adapters.NewPropertiesSource()
	}, "properties", "props")
	RegisterSource(FormatXLSX, func() adapters.Source {
		return adapters.NewXLSXSource()
	}, "xlsx", "xlsm")
	RegisterSource(FormatJSON, func() adapters.Source {
		return adapters.NewTreeSource(FormatJSON, adapters.ReadJSON)
	}, "json")
	RegisterSource(FormatYAML, func() adapters.Source {
		return adapters.NewTreeSource(FormatYAML, adapters.ReadYAML)
	}, "yaml", "yml")
	RegisterSource(FormatXML, func() adapters.Source {
		return adapters.NewTreeSource(FormatXML, adapters.ReadXML)
	}, "xml")

	// Register Sinks
	RegisterSink(FormatCSV, func() adapters.Sink {
		return adapters.NewCSVSink()
	})
	RegisterSink(FormatProperties, func() adapters.Sink {
		return adapters.NewPropertiesSink()
	})
	RegisterSink(FormatXLSX, func() adapters.Sink {
		return adapters.NewXLSXSink()
	})
	RegisterSink(FormatParquet, func() adapters.Sink {
		return adapters.NewParquetSink()
	})

	// Register tree codecs
	RegisterTree(FormatJSON, TreeCodec{Read: adapters.ReadJSON, Write: adapters.WriteJSON}, "json")
	RegisterTree(FormatYAML, TreeCodec{Read: adapters.ReadYAML, Write: adapters.WriteYAML}, "yaml", "yml")
	RegisterTree(FormatXML, TreeCodec{Read: adapters.ReadXML, Write: adapters.WriteXML}, "xml")
}

// Open auto-detects the format of path and reads it into a container.
// Tab-separated files get a tab delimiter; everything else keeps the
// container defaults unless the caller overrides them.
func Open(path string, fltr *filter.Filter, opts ...container.Option) (*container.Container, error) {
	format := DetectFormat(path)
	src, err := GetSource(format)
	if err != nil {
		return nil, err
	}

	if ext := strings.TrimPrefix(util.BaseFormat(path), "."); ext == "tsv" {
		opts = append([]container.Option{container.WithDelimiter("\t")}, opts...)
	}
	return src.Read(path, fltr, opts...)
}

// Write auto-detects the format of path and serializes the container
// through the matching sink.
func Write(c *container.Container, path string) error {
	sink, err := GetSink(DetectFormat(path))
	if err != nil {
		return err
	}
	return sink.Write(c, path)
}

// OpenTree auto-detects the format of path and reads it into a tree.
func OpenTree(path string) (*tree.Tree, error) {
	codec, err := GetTree(DetectFormat(path))
	if err != nil {
		return nil, err
	}
	return codec.Read(path)
}

// WriteTree auto-detects the format of path and serializes the tree.
func WriteTree(t *tree.Tree, path string) error {
	codec, err := GetTree(DetectFormat(path))
	if err != nil {
		return err
	}
	return codec.Write(t, path)
}
