package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tabkit/tabkit/pkg/config"
	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the TabKit configuration",
	Long: `Show the effective configuration (defaults, config files, environment,
and --set overrides merged) or persist a value to the user config file.

Examples:
  tabkit config get
  tabkit config get container.delimiter
  tabkit config set export.compression zstd
  tabkit config options`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the effective configuration, or one key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the user config file",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the option keys accepted by set and --set",
	RunE:  runConfigOptions,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configOptionsCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(appCfg)
	if err != nil {
		return errors.Wrap(err, errors.CodeConfig, "marshal config")
	}

	if len(args) == 0 {
		fmt.Print(string(data))
		return nil
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, errors.CodeConfig, "reload config")
	}

	var cur any = doc
	key := args[0]
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return errors.Newf(errors.CodeConfig, "no such config key: %s", key)
		}
		cur, ok = m[part]
		if !ok {
			return errors.Newf(errors.CodeConfig, "no such config key: %s", key)
		}
	}

	switch v := cur.(type) {
	case map[string]any:
		out, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, errors.CodeConfig, "marshal %s", key)
		}
		fmt.Print(string(out))
	default:
		fmt.Println(v)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	mgr := config.NewManager()
	if err := mgr.Load(); err != nil {
		return err
	}
	if err := mgr.SetOption(args[0], args[1]); err != nil {
		return err
	}
	if err := mgr.Save(); err != nil {
		return err
	}
	fmt.Println(tui.Success(fmt.Sprintf("%s = %s saved to ~/.tabkit/config.yaml", args[0], args[1])))
	return nil
}

func runConfigOptions(cmd *cobra.Command, args []string) error {
	fmt.Println(tui.Muted("  options usable with config set and --set:"))
	for _, name := range config.OptionNames() {
		fmt.Println("  " + name)
	}
	return nil
}
