package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tabkit/tabkit"
	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/filter"
	"github.com/tabkit/tabkit/pkg/telemetry"
	"github.com/tabkit/tabkit/pkg/tui"
	"github.com/tabkit/tabkit/pkg/validation"
)

var (
	setHeader     string
	setRow        int
	setValue      string
	setMergeRow   string
	setOccurrence []int
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set or merge values, writing through to the file",
	Long: `Edit a container in place. Changes write through to the backing file
immediately; --output redirects them to a new file instead.

The input is always read unfiltered so untouched rows survive the
write-through; --filter only selects which rows to edit.

Examples:
  tabkit set -i people.csv --header city --value Berlin
  tabkit set -i people.csv --header city --row 2 --value Berlin
  tabkit set -i people.csv --header city --value Berlin --filter "name=Alice"
  tabkit set -i people.csv --header city --value Berlin --filter "city=*" --occurrence 0
  tabkit set -i people.csv --merge-row "3;Cara;" --row 1
  tabkit set -i people.csv --header city --value Berlin -o edited.csv`,
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	setCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the result here instead of in place")
	setCmd.Flags().StringVar(&setHeader, "header", "", "Header to write")
	setCmd.Flags().StringVar(&setValue, "value", "", "Value to write")
	setCmd.Flags().IntVar(&setRow, "row", 0, "Row index to write")
	setCmd.Flags().StringVar(&setMergeRow, "merge-row", "", "Delimited record merged into --row; empty fields keep the old value")
	setCmd.Flags().StringArrayVar(&filterFlags, "filter", nil, `Rows to edit, like "name=Alice" (repeatable, AND)`)
	setCmd.Flags().IntSliceVar(&setOccurrence, "occurrence", nil, "Positions within the filter matches to edit (default all)")
	addShapeFlags(setCmd)

	setCmd.MarkFlagRequired("input")
}

func runSet(cmd *cobra.Command, args []string) (err error) {
	_, span := telemetry.Start(cmd.Context(), "tabkit.set",
		attribute.String("run.id", runID),
		attribute.String("input", inputFile))
	defer func() { telemetry.End(span, err) }()

	if err = validation.ValidateInputFile(inputFile); err != nil {
		return err
	}
	if outputFile != "" {
		if err = validation.ValidateOutputPath(outputFile); err != nil {
			return err
		}
	}
	if setHeader != "" {
		if err = validation.ValidateHeaderName(setHeader); err != nil {
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

	c, err := tabkit.Open(inputFile, opts...)
	if err != nil {
		return err
	}

	// Redirected output: detach so mutations stay in memory, write once
	// at the end.
	if outputFile != "" {
		c.Detach()
	}

	switch {
	case setMergeRow != "":
		if !cmd.Flags().Changed("row") {
			return errors.New(errors.CodeIndexRange, "--merge-row needs --row")
		}
		err = c.MergeRows(setRow, strings.Split(setMergeRow, c.Delimiter()))

	case setHeader == "":
		return errors.New(errors.CodeNoSuchHeader, "--header is required unless merging a row")

	case cmd.Flags().Changed("row"):
		err = c.SetValueAt(setHeader, setRow, setValue)

	case fltr.Len() > 0 || len(setOccurrence) > 0:
		err = c.SetValues(setHeader, setOccurrence, setValue, fltr)

	default:
		err = c.SetValue(setHeader, setValue)
	}
	if err != nil {
		return err
	}

	target := inputFile
	if outputFile != "" {
		target = outputFile
		if err = writeContainer(cmd, c, outputFile); err != nil {
			return err
		}
	}
	fmt.Println(tui.Success(fmt.Sprintf("updated %s", target)))
	return nil
}
