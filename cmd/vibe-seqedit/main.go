// Package main provides the vibe-seqedit command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-seqedit/internal/analysis"
	"github.com/inodb/vibe-seqedit/internal/editor"
	"github.com/inodb/vibe-seqedit/internal/session"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".vibe-seqedit"

// usageError marks errors caused by bad invocation rather than bad data.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		return ExitUsage
	}
	return ExitError
}

var logger = zap.NewNop()

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "vibe-seqedit",
		Short: "Sequence editing and analysis engine",
		Long: `vibe-seqedit edits DNA, RNA and protein sequences with scarred history,
undo/redo and checkpoints, and analyzes them (GC windows, six-frame ORFs,
IUPAC motifs).`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			l, err := newLogger(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose (development) logging")

	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newCheckpointsCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads ~/.vibe-seqedit.yaml and VIBE_SEQEDIT_* environment
// variables on top of the defaults.
func initConfig() error {
	viper.SetDefault("history.max_undo", session.DefaultMaxHistory)
	viper.SetDefault("analysis.min_orf_aa", analysis.DefaultMinORFAminoAcids)
	viper.SetDefault("analysis.max_orf_length", analysis.DefaultMaxORFLength)
	viper.SetDefault("analysis.max_gc_length", analysis.DefaultMaxGCLength)
	viper.SetDefault("analysis.workers", 0)
	viper.SetDefault("checkpoint.db", "")
	viper.SetDefault("log.level", "info")

	viper.SetEnvPrefix("VIBE_SEQEDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// configPath returns the config file in use, or the default location.
func configPath() (string, error) {
	if f := viper.ConfigFileUsed(); f != "" {
		return f, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	level, err := zapcore.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return nil, usagef("log.level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// editorOptions builds editor options from configuration.
func editorOptions() editor.Options {
	return editor.Options{
		Session: session.Options{MaxHistory: viper.GetInt("history.max_undo")},
		Limits: analysis.Limits{
			MaxORFLength: viper.GetInt("analysis.max_orf_length"),
			MaxGCLength:  viper.GetInt("analysis.max_gc_length"),
		},
		MinORFAA: viper.GetInt("analysis.min_orf_aa"),
		Workers:  viper.GetInt("analysis.workers"),
	}
}
