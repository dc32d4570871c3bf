package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tabkit/tabkit"
	"github.com/tabkit/tabkit/pkg/filter"
	"github.com/tabkit/tabkit/pkg/tui"
	"github.com/tabkit/tabkit/pkg/validation"
	"github.com/tabkit/tabkit/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export a container whenever its file changes",
	Long: `Watch the input file and re-run the conversion to the output file
every time it is rewritten, after the configured debounce window.
Runs until interrupted.

Examples:
  tabkit watch -i live.csv -o live.parquet
  tabkit watch -i events.csv -o active.csv --filter "status=active"
  tabkit watch -i data.csv -o data.xlsx --set watch.debounce=2s`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	watchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	watchCmd.Flags().StringArrayVar(&filterFlags, "filter", nil, `Row filter applied on each export (repeatable, AND)`)
	addShapeFlags(watchCmd)

	watchCmd.MarkFlagRequired("input")
	watchCmd.MarkFlagRequired("output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := validation.ValidateInputFile(inputFile); err != nil {
		return err
	}
	if err := validation.ValidateOutputPath(outputFile); err != nil {
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

	export := func(path string) error {
		start := time.Now()
		c, err := tabkit.OpenFiltered(path, fltr, opts...)
		if err != nil {
			return err
		}
		c.Detach()
		if err := writeContainer(cmd, c, outputFile); err != nil {
			return err
		}
		fmt.Println(tui.Success(fmt.Sprintf("%s → %s (%d rows, %s)",
			filepath.Base(path), filepath.Base(outputFile),
			c.RowCount(), tui.FormatDuration(time.Since(start)))))
		return nil
	}

	// Export once up front so the output exists before the first change.
	if err := export(inputFile); err != nil {
		return err
	}

	w, err := watch.NewWatcher(appCfg.Watch.Debounce, appLog)
	if err != nil {
		return err
	}
	defer w.Close()

	w.OnChange = export
	w.OnError = func(path string, err error) {
		fmt.Fprintln(os.Stderr, tui.Failure(fmt.Sprintf("watch %s: %v", path, err)))
	}
	if err := w.Watch(inputFile); err != nil {
		return err
	}

	fmt.Println(tui.Muted(fmt.Sprintf("  watching %s (debounce %s), Ctrl-C to stop",
		inputFile, appCfg.Watch.Debounce)))

	if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
