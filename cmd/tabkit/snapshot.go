package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tabkit/tabkit"
	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/snapshot"
	"github.com/tabkit/tabkit/pkg/tui"
	"github.com/tabkit/tabkit/pkg/validation"
)

var (
	snapName string
	snapID   string
	snapKeep int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and restore container state",
	Long: `Persist the full state of a container (headers, metadata, rows) to the
configured backend and bring it back later, independent of the source file.

Backends are configured via snapshot.backend: local (default), redis, or s3.

Examples:
  tabkit snapshot save -i people.csv --name before-cleanup
  tabkit snapshot list
  tabkit snapshot restore --name before-cleanup -o people.csv
  tabkit snapshot restore --id 4f1c... -o restored.csv
  tabkit snapshot delete --id 4f1c...
  tabkit snapshot save -i big.csv --set snapshot.backend=s3 --set snapshot.s3.bucket=backups`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Capture a container into the snapshot store",
	RunE:  runSnapshotSave,
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Rebuild a container from a stored snapshot",
	RunE:  runSnapshotRestore,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	RunE:  runSnapshotList,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a snapshot by ID",
	RunE:  runSnapshotDelete,
}

var snapshotPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old snapshots, keeping the newest per name",
	RunE:  runSnapshotPrune,
}

func init() {
	snapshotSaveCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	snapshotSaveCmd.Flags().StringVar(&snapName, "name", "", "Snapshot name (default run-<id>)")
	addShapeFlags(snapshotSaveCmd)
	snapshotSaveCmd.MarkFlagRequired("input")

	snapshotRestoreCmd.Flags().StringVar(&snapID, "id", "", "Snapshot ID to restore")
	snapshotRestoreCmd.Flags().StringVar(&snapName, "name", "", "Restore the newest snapshot with this name")
	snapshotRestoreCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default: snapshot source path)")
	addShapeFlags(snapshotRestoreCmd)

	snapshotDeleteCmd.Flags().StringVar(&snapID, "id", "", "Snapshot ID to delete (required)")
	snapshotDeleteCmd.MarkFlagRequired("id")

	snapshotPruneCmd.Flags().IntVar(&snapKeep, "keep", 3, "Snapshots to keep per name")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	snapshotCmd.AddCommand(snapshotPruneCmd)
}

// openStore builds the snapshot backend named by the configuration.
// The returned closer is always safe to call.
func openStore(ctx context.Context) (snapshot.Store, func() error, error) {
	noop := func() error { return nil }

	switch appCfg.Snapshot.Backend {
	case "", "local":
		store, err := snapshot.NewLocalStore(appCfg.Snapshot.Dir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case "redis":
		sc := snapshot.DefaultRedisConfig(appCfg.Snapshot.Redis.Addr)
		sc.Password = appCfg.Snapshot.Redis.Password
		sc.DB = appCfg.Snapshot.Redis.DB
		if appCfg.Snapshot.Redis.TTL > 0 {
			sc.TTL = appCfg.Snapshot.Redis.TTL
		}
		store, err := snapshot.NewRedisStore(sc)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil

	case "s3":
		sc := snapshot.DefaultS3Config(appCfg.Snapshot.S3.Bucket)
		if appCfg.Snapshot.S3.Prefix != "" {
			sc.Prefix = appCfg.Snapshot.S3.Prefix
		}
		sc.Region = appCfg.Snapshot.S3.Region
		sc.Endpoint = appCfg.Snapshot.S3.Endpoint
		sc.AccessKeyID = appCfg.Snapshot.S3.AccessKey
		sc.SecretAccessKey = appCfg.Snapshot.S3.SecretKey
		sc.UsePathStyle = appCfg.Snapshot.S3.PathStyle
		store, err := snapshot.NewS3Store(ctx, sc)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	default:
		return nil, noop, errors.Newf(errors.CodeConfig,
			"unknown snapshot backend %q (want local, redis, or s3)", appCfg.Snapshot.Backend)
	}
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	store, closer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	name := snapName
	if name == "" {
		name = "run-" + runID[:8]
	}

	mgr := snapshot.NewManager(store, appCfg.Snapshot.Interval, appLog)
	st, err := mgr.Save(ctx, c, name)
	if err != nil {
		return err
	}

	fmt.Println(tui.Success("snapshot saved"))
	fmt.Println(tui.Field("ID", st.ID))
	fmt.Println(tui.Field("Name", st.Name))
	fmt.Println(tui.Field("Backend", store.Name()))
	fmt.Println(tui.Field("Rows", strconv.Itoa(len(st.Rows))))
	return nil
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	var st *snapshot.State
	if snapID != "" {
		st, err = store.Load(ctx, snapID)
	} else {
		mgr := snapshot.NewManager(store, appCfg.Snapshot.Interval, appLog)
		st, err = mgr.Latest(ctx, snapName)
	}
	if err != nil {
		return err
	}

	// Shape flags override the stored shape only when given explicitly;
	// otherwise the snapshot's own orientation and delimiter apply.
	var opts []container.Option
	if cmd.Flags().Changed("delimiter") {
		opts = append(opts, container.WithDelimiter(delimiterFlag))
	}
	if cmd.Flags().Changed("orientation") {
		o, ok := container.ParseOrientation(orientationFlag)
		if !ok {
			return fmt.Errorf("unknown orientation %q, want rows or columns", orientationFlag)
		}
		opts = append(opts, container.WithOrientation(o))
	}
	opts = append(opts, container.WithLogger(appLog))

	c, err := snapshot.Restore(st, opts...)
	if err != nil {
		return err
	}

	out := outputFile
	if out == "" {
		out = st.SourcePath
	}
	if out == "" {
		return errors.Newf(errors.CodeSnapshot,
			"snapshot %s has no source path, use --output", st.ID)
	}

	c.Detach()
	if err := tabkit.Write(c, out); err != nil {
		return err
	}

	fmt.Println(tui.Success(fmt.Sprintf("restored %q (%d rows) → %s", st.Name, c.RowCount(), out)))
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	states, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		fmt.Println(tui.Muted("  no snapshots in " + store.Name() + " store"))
		return nil
	}

	rows := make([][]string, 0, len(states))
	for _, st := range states {
		rows = append(rows, []string{
			st.ID,
			st.Name,
			st.CreatedAt.Format(time.RFC3339),
			strconv.Itoa(len(st.Rows)),
			st.SourcePath,
		})
	}
	fmt.Print(tui.Table([]string{"ID", "NAME", "CREATED", "ROWS", "SOURCE"}, rows))
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if err := store.Delete(ctx, snapID); err != nil {
		return err
	}
	fmt.Println(tui.Success("deleted snapshot " + snapID))
	return nil
}

func runSnapshotPrune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closer, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	mgr := snapshot.NewManager(store, appCfg.Snapshot.Interval, appLog)
	pruned, err := mgr.Prune(ctx, snapKeep)
	if err != nil {
		return err
	}
	if len(pruned) == 0 {
		fmt.Println(tui.Muted("  nothing to prune"))
		return nil
	}
	for _, st := range pruned {
		fmt.Println(tui.Field(st.ID, st.Name))
	}
	fmt.Println(tui.Success(fmt.Sprintf("pruned %d snapshots, kept the newest %d per name",
		len(pruned), snapKeep)))
	return nil
}
