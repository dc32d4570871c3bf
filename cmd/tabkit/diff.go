package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tabkit/tabkit"
	"github.com/tabkit/tabkit/pkg/diff"
	"github.com/tabkit/tabkit/pkg/telemetry"
	"github.com/tabkit/tabkit/pkg/validation"
)

var diffKey string

var diffCmd = &cobra.Command{
	Use:   "diff <left> <right>",
	Short: "Compare two containers",
	Long: `Compare two containers and report header drift, added and removed
rows, and cell-level edits. With --key, rows pair up by that header's
value; without it rows pair by full content, which can only tell added
from removed.

Examples:
  tabkit diff before.csv after.csv --key id
  tabkit diff jan.csv feb.csv
  tabkit diff old.properties new.properties --key key`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffKey, "key", "", "Header whose value pairs rows across the two files")
	addShapeFlags(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) (err error) {
	_, span := telemetry.Start(cmd.Context(), "tabkit.diff",
		attribute.String("run.id", runID),
		attribute.String("left", args[0]),
		attribute.String("right", args[1]))
	defer func() { telemetry.End(span, err) }()

	for _, path := range args {
		if err = validation.ValidateInputFile(path); err != nil {
			return err
		}
	}
	opts, err := containerOptions(cmd)
	if err != nil {
		return err
	}

	left, err := tabkit.Open(args[0], opts...)
	if err != nil {
		return err
	}
	right, err := tabkit.Open(args[1], opts...)
	if err != nil {
		return err
	}

	report, err := diff.Compare(left, right, diffKey)
	if err != nil {
		return err
	}
	fmt.Print(report.String())
	return nil
}
