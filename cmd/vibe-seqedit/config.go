package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-seqedit configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-seqedit.yaml.",
		Example: `  vibe-seqedit config                              # show all config
  vibe-seqedit config set analysis.min_orf_aa 50    # report shorter ORFs
  vibe-seqedit config set checkpoint.db ~/.vibe-seqedit/checkpoints.duckdb
  vibe-seqedit config get history.max_undo          # get a value`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

// runConfigShow prints the effective settings, defaults included, as YAML.
func runConfigShow(w io.Writer) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# %s\n", path)
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(viper.AllSettings()); err != nil {
		return err
	}
	return enc.Close()
}

// configKeys lists the settings vibe-seqedit reads. set rejects anything else.
var configKeys = []string{
	"analysis.max_gc_length",
	"analysis.max_orf_length",
	"analysis.min_orf_aa",
	"analysis.workers",
	"checkpoint.db",
	"history.max_undo",
	"log.level",
}

func knownKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

// coerce converts value to the kind of the key's default.
func coerce(key, value string) (any, error) {
	switch viper.Get(key).(type) {
	case int:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, usagef("%s takes a non-negative integer, got %q", key, value)
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, usagef("%s takes true or false, got %q", key, value)
		}
		return b, nil
	}
	return value, nil
}

func runConfigSet(w io.Writer, key, value string) error {
	if !knownKey(key) {
		return usagef("unknown config key %q (known: %s)", key, strings.Join(configKeys, ", "))
	}
	v, err := coerce(key, value)
	if err != nil {
		return err
	}
	viper.Set(key, v)

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	fmt.Fprintf(w, "%s: %v (%s)\n", key, v, path)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	if !knownKey(key) && !viper.IsSet(key) {
		return usagef("unknown config key %q", key)
	}
	fmt.Fprintln(w, viper.Get(key))
	return nil
}
