// TabKit - format-agnostic tabular data toolkit.
// Queries, edits, and converts CSV, properties, XLSX, Parquet, JSON,
// YAML, and XML data through one container model.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tabkit/tabkit"
	"github.com/tabkit/tabkit/pkg/config"
	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/diag"
	"github.com/tabkit/tabkit/pkg/telemetry"
	"github.com/tabkit/tabkit/pkg/tui"
	"github.com/tabkit/tabkit/pkg/validation"
)

var (
	version = tabkit.Version
	commit  = "dev"
)

// Global flags
var (
	verbose    bool
	configPath string
	setFlags   []string
)

// Per-command flags, shared across the command set
var (
	inputFile       string
	outputFile      string
	filterFlags     []string
	metadataFlags   []string
	delimiterFlag   string
	orientationFlag string
	headerIndexFlag int
	compressionFlag string
)

// Per-run state resolved by the root PersistentPreRunE
var (
	appCfg       *config.Config
	appLog       *slog.Logger
	runID        string
	traceCleanup func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "tabkit",
	Short: "TabKit - query and edit tabular data in any format",
	Long: `TabKit reads tabular data containers (CSV, properties, XLSX) and tree
documents (JSON, YAML, XML), queries and edits them through one model, and
writes them back in any supported format.

Formats are detected from file extensions; gzip compression is transparent.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appCfg = cfg
		runID = uuid.NewString()

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		appLog = diag.NewStyled(os.Stderr, level)
		appLog.Debug("run started", "id", runID, "version", version)

		traceCleanup, err = initTelemetry(cmd.Context(), cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if traceCleanup == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := traceCleanup(ctx); err != nil {
			appLog.Warn("telemetry shutdown failed", "error", err)
		}
	},
}

func main() {
	ctx, cancel := signalContext()
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, tui.Failure(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (skips the default chain)")
	rootCmd.PersistentFlags().StringArrayVar(&setFlags, "set", nil, "Override a config option (key=value, repeatable)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(appendCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(configCmd)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()
	return ctx, cancel
}

// loadConfig resolves configuration for this run: defaults, then the
// file chain (or --config), then environment, then --set overrides.
func loadConfig() (*config.Config, error) {
	m := config.NewManager()
	if configPath != "" {
		if err := m.LoadFile(configPath); err != nil {
			return nil, err
		}
	} else if err := m.Load(); err != nil {
		return nil, err
	}
	if err := m.Apply(setFlags); err != nil {
		return nil, err
	}
	return m.Get(), nil
}

func initTelemetry(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	tcfg := telemetry.DefaultConfig("tabkit", version)
	tcfg.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.Endpoint != "" {
		tcfg.Endpoint = cfg.Telemetry.Endpoint
	}
	return telemetry.NewProvider(tcfg).Init(ctx)
}

// containerOptions builds read options from configuration with flag
// overrides. Only flags the command actually declares take part.
func containerOptions(cmd *cobra.Command) ([]container.Option, error) {
	cfg := appCfg

	delim := cfg.Container.Delimiter
	if cmd.Flags().Changed("delimiter") {
		delim = delimiterFlag
	}
	orientName := cfg.Container.Orientation
	if cmd.Flags().Changed("orientation") {
		orientName = orientationFlag
	}
	orient, ok := container.ParseOrientation(orientName)
	if !ok {
		return nil, fmt.Errorf("unknown orientation %q, want rows or columns", orientName)
	}
	if err := validation.ValidateDelimiter(delim); err != nil {
		return nil, err
	}
	headerIndex := cfg.Container.HeaderIndex
	if cmd.Flags().Changed("header-index") {
		headerIndex = headerIndexFlag
	}

	opts := []container.Option{
		container.WithDelimiter(delim),
		container.WithOrientation(orient),
		container.WithHeaderIndex(headerIndex),
		container.WithLogger(appLog),
	}
	for _, pair := range metadataFlags {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed metadata %q, want key=value", pair)
		}
		opts = append(opts, container.WithMetadata(k, v))
	}
	return opts, nil
}

// addShapeFlags declares the container shape flags shared by the
// reading commands.
func addShapeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&delimiterFlag, "delimiter", ";", "Field delimiter for text containers")
	cmd.Flags().StringVar(&orientationFlag, "orientation", "rows", "Container orientation (rows, columns)")
	cmd.Flags().IntVar(&headerIndexFlag, "header-index", 0, "Line index of the header row")
}
