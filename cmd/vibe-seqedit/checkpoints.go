package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-seqedit/internal/duckdb"
	"github.com/inodb/vibe-seqedit/internal/output"
)

func newCheckpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "List or delete persisted checkpoints",
		Example: `  vibe-seqedit checkpoints list --db checkpoints.duckdb
  vibe-seqedit checkpoints list --block pUC19
  vibe-seqedit checkpoints blocks
  vibe-seqedit checkpoints delete 3f0c6a9e-...`,
	}

	cmd.PersistentFlags().String("db", "", "DuckDB checkpoint file (overrides checkpoint.db)")

	cmd.AddCommand(newCheckpointsListCmd())
	cmd.AddCommand(newCheckpointsDeleteCmd())
	cmd.AddCommand(newCheckpointsBlocksCmd())
	return cmd
}

func openStore(cmd *cobra.Command) (*duckdb.Store, error) {
	path := checkpointDB(cmd)
	if path == "" {
		return nil, usagef("no checkpoint database: pass --db or set checkpoint.db")
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("checkpoint store opened", zap.String("path", store.Path()))
	return store, nil
}

func newCheckpointsListCmd() *cobra.Command {
	var block string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List checkpoints, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			cps, err := store.ListCheckpoints(cmd.Context(), block)
			if err != nil {
				return err
			}
			return output.WriteCheckpoints(cmd.OutOrStdout(), cps)
		},
	}

	cmd.Flags().StringVar(&block, "block", "", "Only list checkpoints of this block")
	return cmd
}

func newCheckpointsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete checkpoints by id",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			for _, id := range args {
				if err := store.DeleteCheckpoint(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return nil
		},
	}
}

func newCheckpointsBlocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks",
		Short: "List block ids that have checkpoints",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			blocks, err := store.Blocks(cmd.Context())
			if err != nil {
				return err
			}
			for _, b := range blocks {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}
