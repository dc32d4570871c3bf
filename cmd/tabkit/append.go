package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tabkit/tabkit"
	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/filter"
	"github.com/tabkit/tabkit/pkg/telemetry"
	"github.com/tabkit/tabkit/pkg/tui"
	"github.com/tabkit/tabkit/pkg/validation"
)

var appendCmd = &cobra.Command{
	Use:   "append <file> <file>...",
	Short: "Append several containers into one output",
	Long: `Read all input files concurrently and append them onto the first.
Files whose headers are a permutation of the first file's are remapped
column by column; files with different headers abort the run.

Examples:
  tabkit append jan.csv feb.csv mar.csv -o q1.csv
  tabkit append part-*.csv -o all.parquet
  tabkit append a.csv b.csv -o big.csv --filter "status=active"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAppend,
}

func init() {
	appendCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	appendCmd.Flags().StringArrayVar(&filterFlags, "filter", nil, `Row filter applied while reading (repeatable, AND)`)
	appendCmd.Flags().StringVar(&compressionFlag, "compression", "snappy", "Parquet compression (none, snappy, gzip, zstd, lz4)")
	addShapeFlags(appendCmd)

	appendCmd.MarkFlagRequired("output")
}

func runAppend(cmd *cobra.Command, args []string) (err error) {
	_, span := telemetry.Start(cmd.Context(), "tabkit.append",
		attribute.String("run.id", runID),
		attribute.Int("files", len(args)),
		attribute.String("output", outputFile))
	defer func() { telemetry.End(span, err) }()

	for _, path := range args {
		if err = validation.ValidateInputFile(path); err != nil {
			return err
		}
	}
	if err = validation.ValidateOutputPath(outputFile); err != nil {
		return err
	}
	fltr, err := filter.Parse(filterFlags...)
	if err != nil {
		return err
	}
	opts, err := containerOptions(cmd)
	if err != nil {
		return err
	}

	containers, err := tabkit.OpenAll(cmd.Context(), args, fltr, opts...)
	if err != nil {
		return err
	}

	base := containers[0]
	total := int64(0)
	for _, c := range containers[1:] {
		total += int64(c.RowCount())
	}

	bar := tui.ShowProgress(total, "appending")
	for i, c := range containers[1:] {
		if state := base.AppendContainer(c); state == container.StateIncompatible {
			return errors.Newf(errors.CodeIncompatibleHeaders,
				"headers of %s do not match %s", args[i+1], args[0])
		}
		bar.Add(c.RowCount())
	}
	bar.Finish()

	base.Detach()
	if err = writeContainer(cmd, base, outputFile); err != nil {
		return err
	}
	fmt.Println(tui.Success(fmt.Sprintf("%d files, %d rows → %s",
		len(args), base.RowCount(), outputFile)))
	return nil
}
