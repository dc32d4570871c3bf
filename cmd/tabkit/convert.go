package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tabkit/tabkit"
	"github.com/tabkit/tabkit/pkg/adapters"
	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/filter"
	"github.com/tabkit/tabkit/pkg/perf"
	"github.com/tabkit/tabkit/pkg/registry"
	"github.com/tabkit/tabkit/pkg/telemetry"
	"github.com/tabkit/tabkit/pkg/transform"
	"github.com/tabkit/tabkit/pkg/tui"
	"github.com/tabkit/tabkit/pkg/validation"
)

var (
	convertProfile   bool
	convertSample    int
	convertAnonymize []string
	convertSalt      string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a container between formats",
	Long: `Convert tabular data between any supported source and sink format.
Formats are detected from the file extensions.

Examples:
  tabkit convert -i people.csv -o people.parquet
  tabkit convert -i app.properties -o app.xlsx
  tabkit convert -i events.csv.gz -o events.parquet --compression zstd
  tabkit convert -i people.csv -o adults.csv --filter "age>=18"
  tabkit convert -i people.csv -o tagged.csv --metadata "Source=ERP"
  tabkit convert -i big.csv -o sample.csv --sample 1000
  tabkit convert -i people.csv -o shared.csv --anonymize name --salt s3cret`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	convertCmd.Flags().StringArrayVar(&filterFlags, "filter", nil, `Row filter like "name=Alice" or "age>=30" (repeatable, AND)`)
	convertCmd.Flags().StringArrayVar(&metadataFlags, "metadata", nil, "Metadata injected into every row (key=value, repeatable)")
	convertCmd.Flags().StringVar(&compressionFlag, "compression", "snappy", "Parquet compression (none, snappy, gzip, zstd, lz4)")
	convertCmd.Flags().BoolVar(&convertProfile, "profile", false, "Print a performance profile after the run")
	convertCmd.Flags().IntVar(&convertSample, "sample", 0, "Keep a uniform random sample of this many rows")
	convertCmd.Flags().StringArrayVar(&convertAnonymize, "anonymize", nil, "Hash every value under this header (repeatable)")
	convertCmd.Flags().StringVar(&convertSalt, "salt", "", "Salt for --anonymize hashing")
	addShapeFlags(convertCmd)

	convertCmd.MarkFlagRequired("input")
	convertCmd.MarkFlagRequired("output")
}

func runConvert(cmd *cobra.Command, args []string) (err error) {
	_, span := telemetry.Start(cmd.Context(), "tabkit.convert",
		attribute.String("run.id", runID),
		attribute.String("input", inputFile),
		attribute.String("output", outputFile))
	defer func() { telemetry.End(span, err) }()

	if err = validation.ValidateInputFile(inputFile); err != nil {
		return err
	}
	if err = validation.ValidateOutputPath(outputFile); err != nil {
		return err
	}
	if cmd.Flags().Changed("compression") {
		if err = validation.ValidateCompression(compressionFlag); err != nil {
			return err
		}
	}
	fltr, err := filter.Parse(filterFlags...)
	if err != nil {
		return err
	}
	opts, err := containerOptions(cmd)
	if err != nil {
		return err
	}

	var prof *perf.Profiler
	if convertProfile {
		prof = perf.New()
	}
	phase := func(name string) func() {
		if prof == nil {
			return func() {}
		}
		return prof.StartPhase(name)
	}

	start := time.Now()
	openDone := phase("open")
	c, err := tabkit.OpenFiltered(inputFile, fltr, opts...)
	if err != nil {
		return err
	}
	openDone()
	openTook := time.Since(start)

	if convertSample > 0 || len(convertAnonymize) > 0 {
		c.Detach()
		transformDone := phase("transform")
		if convertSample > 0 {
			if c, err = transform.Sample(c, convertSample); err != nil {
				return err
			}
		}
		if len(convertAnonymize) > 0 {
			if err = transform.AnonymizeHeaders(c, convertAnonymize, convertSalt); err != nil {
				return err
			}
		}
		transformDone()
	}

	writeStart := time.Now()
	writeDone := phase("write")
	if err = writeContainer(cmd, c, outputFile); err != nil {
		return err
	}
	writeDone()
	writeTook := time.Since(writeStart)

	report := &tui.Report{
		Rows:     c.RowCount(),
		Columns:  len(c.HeaderNames()),
		Duration: time.Since(start),
	}
	if in, statErr := os.Stat(inputFile); statErr == nil {
		report.InputSize = in.Size()
	}
	if out, statErr := os.Stat(outputFile); statErr == nil {
		report.OutputSize = out.Size()
	}
	tui.PrintReport(report)

	if prof != nil {
		prof.RecordRead(report.InputSize, openTook)
		prof.RecordWrite(report.OutputSize, writeTook)
		prof.RecordRows(int64(c.RowCount()))
		fmt.Fprint(os.Stderr, prof.Report().String())
	}
	return nil
}

// writeContainer writes c to path, routing parquet output through a
// sink carrying the effective compression setting.
func writeContainer(cmd *cobra.Command, c *container.Container, path string) error {
	if registry.DetectFormat(path) == registry.FormatParquet {
		sink := adapters.NewParquetSink()
		if appCfg.Export.Compression != "" {
			sink.Compression = appCfg.Export.Compression
		}
		if cmd.Flags().Changed("compression") {
			sink.Compression = compressionFlag
		}
		return sink.Write(c, path)
	}
	return tabkit.Write(c, path)
}
