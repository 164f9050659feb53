package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-seqedit/internal/checkpoint"
	"github.com/inodb/vibe-seqedit/internal/duckdb"
	"github.com/inodb/vibe-seqedit/internal/editor"
	"github.com/inodb/vibe-seqedit/internal/output"
	"github.com/inodb/vibe-seqedit/internal/script"
	"github.com/inodb/vibe-seqedit/internal/session"
)

func newEditCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "edit <script.yaml>",
		Short: "Replay an edit script",
		Long: `Replay a YAML edit script (clicks, key presses, pastes, undo/redo,
checkpoints, reverse complement, feature edits) and print the resulting
sequence, features and changelog. Rejected steps are reported on stderr.`,
		Example: `  vibe-seqedit edit digest.yaml
  vibe-seqedit edit --db checkpoints.duckdb digest.yaml`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.Load(args[0])
			if err != nil {
				return err
			}

			ed := editor.New(editorOptions())
			ed.SetLogger(logger)

			if path := checkpointDB(cmd); path != "" {
				store, err := duckdb.Open(path)
				if err != nil {
					return err
				}
				defer store.Close()
				logger.Debug("checkpoint store opened", zap.String("path", store.Path()))
				ed.SetCheckpointStore(store)
			}

			p := script.NewPlayer(ed)
			p.SetLogger(logger.Named("script"))
			res, err := p.Run(cmd.Context(), s)
			if err != nil {
				return err
			}

			for _, st := range res.Rejected() {
				fmt.Fprintf(cmd.ErrOrStderr(), "step %d (%s) not applied: %v\n", st.Index, st.Op, st.Rejection)
			}
			logger.Info("script replayed",
				zap.String("block", res.Block),
				zap.Int("steps", len(res.Steps)),
				zap.Int("rejected", len(res.Rejected())))

			if err := writeView(cmd.OutOrStdout(), res.View, ed.ListCheckpoints(res.Block)); err != nil {
				return err
			}
			if strict && len(res.Rejected()) > 0 {
				return fmt.Errorf("%d step(s) not applied", len(res.Rejected()))
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "DuckDB file for persistent checkpoints (overrides checkpoint.db)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error if any step was not applied")
	return cmd
}

// writeView prints a block's final state section by section.
func writeView(w io.Writer, v session.View, cps []checkpoint.Checkpoint) error {
	fmt.Fprintf(w, "## %s\t%s\t%s\t%d\n", v.BlockID, v.SequenceType, v.Topology, len(v.Raw))
	fmt.Fprintln(w, v.Raw)

	fmt.Fprintln(w, "\n## features")
	if err := output.WriteFeatures(w, v.Features); err != nil {
		return err
	}
	fmt.Fprintln(w, "\n## changelog")
	if err := output.WriteScars(w, v.Scars); err != nil {
		return err
	}
	fmt.Fprintln(w, "\n## checkpoints")
	return output.WriteCheckpoints(w, cps)
}

// checkpointDB returns --db when given, otherwise checkpoint.db from config.
func checkpointDB(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
		return f.Value.String()
	}
	return viper.GetString("checkpoint.db")
}
