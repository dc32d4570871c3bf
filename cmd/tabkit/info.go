package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tabkit/tabkit"
	"github.com/tabkit/tabkit/pkg/registry"
	"github.com/tabkit/tabkit/pkg/tui"
	"github.com/tabkit/tabkit/pkg/validation"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the shape and headers of a container",
	Long: `Read a container and print its shape: format, orientation, row and
column counts, declared metadata, and per-header statistics.

Examples:
  tabkit info -i people.csv
  tabkit info -i app.properties
  tabkit info -i book.xlsx`,
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	addShapeFlags(infoCmd)

	infoCmd.MarkFlagRequired("input")
}

func runInfo(cmd *cobra.Command, args []string) error {
	if err := validation.ValidateInputFile(inputFile); err != nil {
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

	var size string
	if stat, err := os.Stat(inputFile); err == nil {
		size = tui.FormatBytes(stat.Size())
	}

	fmt.Println()
	fmt.Println("  " + tui.Title(inputFile))
	fmt.Println(tui.Field("Format", registry.DetectFormat(inputFile)))
	if size != "" {
		fmt.Println(tui.Field("Size", size))
	}
	fmt.Println(tui.Field("Orientation", c.Orientation().String()))
	fmt.Println(tui.Field("Delimiter", c.Delimiter()))
	fmt.Println(tui.Field("Rows", tui.FormatNumber(int64(c.RowCount()))))
	fmt.Println(tui.Field("Columns", strconv.Itoa(len(c.HeaderNames()))))

	if keys := c.MetadataKeys(); len(keys) > 0 {
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			v, _ := c.MetadataValue(k)
			rows = append(rows, []string{k, v})
		}
		fmt.Println()
		fmt.Println("  " + tui.Accent("METADATA"))
		fmt.Print(tui.Table([]string{"KEY", "VALUE"}, rows))
	}

	c.EnableIndex()
	rows := make([][]string, 0, len(c.HeaderNames()))
	for _, h := range c.HeaderNames() {
		rows = append(rows, []string{
			h,
			strconv.Itoa(c.Cardinality(h)),
			strconv.Itoa(c.MaxLen(h)),
		})
	}
	fmt.Println()
	fmt.Println("  " + tui.Accent("HEADERS"))
	fmt.Print(tui.Table([]string{"NAME", "DISTINCT", "WIDEST"}, rows))
	fmt.Println()
	return nil
}
