package main

import (
	"fmt"

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
	getHeader   string
	getRow      int
	getDistinct bool
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Query values, columns, and rows",
	Long: `Query a container. Without --header the matching rows print as a
table; with --header one column prints; --row narrows to a single value.

Examples:
  tabkit get -i people.csv
  tabkit get -i people.csv --filter "age>=30"
  tabkit get -i people.csv --header name
  tabkit get -i people.csv --header name --row 2
  tabkit get -i people.csv --header city --distinct
  tabkit get -i config.properties --header db.port`,
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	getCmd.Flags().StringArrayVar(&filterFlags, "filter", nil, `Row filter like "name=Alice" or "age>=30" (repeatable, AND)`)
	getCmd.Flags().StringVar(&getHeader, "header", "", "Header to read")
	getCmd.Flags().IntVar(&getRow, "row", 0, "Row index within the matching rows")
	getCmd.Flags().BoolVar(&getDistinct, "distinct", false, "Print distinct values of --header")
	addShapeFlags(getCmd)

	getCmd.MarkFlagRequired("input")
}

func runGet(cmd *cobra.Command, args []string) (err error) {
	_, span := telemetry.Start(cmd.Context(), "tabkit.get",
		attribute.String("run.id", runID),
		attribute.String("input", inputFile))
	defer func() { telemetry.End(span, err) }()

	if err = validation.ValidateInputFile(inputFile); err != nil {
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
	c, err := tabkit.OpenFiltered(inputFile, fltr, opts...)
	if err != nil {
		return err
	}

	switch {
	case getDistinct:
		if getHeader == "" {
			return errors.New(errors.CodeNoSuchHeader, "--distinct needs --header")
		}
		for _, v := range c.GetDistinctValues(getHeader) {
			fmt.Println(v)
		}

	case getHeader != "" && cmd.Flags().Changed("row"):
		vals, err := c.GetValues(getHeader, nil)
		if err != nil {
			return err
		}
		if getRow < 0 || getRow >= len(vals) {
			return errors.IndexOutOfRange(getRow, len(vals))
		}
		fmt.Println(vals[getRow])

	case getHeader != "":
		vals, err := c.GetValues(getHeader, nil)
		if err != nil {
			return err
		}
		for _, v := range vals {
			fmt.Println(v)
		}

	default:
		fmt.Print(tui.Table(c.HeaderNames(), c.Records()))
	}
	return nil
}
