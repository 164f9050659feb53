package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-seqedit/internal/analysis"
	"github.com/inodb/vibe-seqedit/internal/fasta"
	"github.com/inodb/vibe-seqedit/internal/output"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

// inputFlags selects the sequence an analysis runs on.
type inputFlags struct {
	seq    string
	fasta  string
	record string
	typ    string
	output string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.seq, "seq", "", "Sequence given inline")
	cmd.Flags().StringVar(&f.fasta, "fasta", "", "FASTA file (.gz ok); first record unless --record")
	cmd.Flags().StringVar(&f.record, "record", "", "FASTA record id to analyze")
	cmd.Flags().StringVar(&f.typ, "type", "", "Sequence type: dna, rna, protein (detected if empty)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
}

// input resolves the flags to a normalized, validated sequence.
func (f *inputFlags) input() (analysis.Input, error) {
	if (f.seq == "") == (f.fasta == "") {
		return analysis.Input{}, usagef("exactly one of --seq or --fasta is required")
	}

	raw := f.seq
	if f.fasta != "" {
		records, err := fasta.Load(f.fasta)
		if err != nil {
			return analysis.Input{}, err
		}
		rec, err := pickRecord(records, f.record)
		if err != nil {
			return analysis.Input{}, fmt.Errorf("%s: %w", f.fasta, err)
		}
		raw = rec.Seq
	}
	raw = sequence.Normalize(raw)

	typ := sequence.Detect(raw)
	if f.typ != "" {
		var ok bool
		if typ, ok = sequence.ParseType(f.typ); !ok {
			return analysis.Input{}, usagef("unknown sequence type %q", f.typ)
		}
	}
	if err := sequence.ValidateResidues(raw, typ, 0); err != nil {
		return analysis.Input{}, err
	}
	return analysis.Input{Raw: raw, Type: typ}, nil
}

func pickRecord(records []fasta.Record, id string) (fasta.Record, error) {
	if len(records) == 0 {
		return fasta.Record{}, fasta.ErrEmpty
	}
	if id == "" {
		return records[0], nil
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return fasta.Record{}, fmt.Errorf("record %q not found", id)
}

// openOutput returns the writer for -o, or stdout.
func (f *inputFlags) openOutput(cmd *cobra.Command) (io.Writer, func() error, error) {
	if f.output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	out, err := os.Create(f.output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return out, out.Close, nil
}

func newRunner() *analysis.Runner {
	opts := editorOptions()
	r := analysis.NewRunner(opts.Limits, opts.MinORFAA, opts.Workers)
	r.SetLogger(logger.Named("analysis"))
	return r
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a sequence (GC windows, ORFs, motifs)",
		Example: `  vibe-seqedit analyze gc --seq ATGCGCGATTA --window 4 --step 2
  vibe-seqedit analyze orfs --fasta pUC19.fa --min-aa 50
  vibe-seqedit analyze motif --fasta pUC19.fa.gz GAATTC GGATCC RGATCY`,
	}

	cmd.AddCommand(newAnalyzeGCCmd())
	cmd.AddCommand(newAnalyzeORFsCmd())
	cmd.AddCommand(newAnalyzeMotifCmd())

	return cmd
}

func newAnalyzeGCCmd() *cobra.Command {
	var (
		in           inputFlags
		window, step int
	)

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Sliding-window GC content",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := in.input()
			if err != nil {
				return err
			}
			rep := newRunner().Analyze(input, analysis.Request{GC: true, Window: window, Step: step})
			if err := checkSkipped(rep); err != nil {
				return err
			}

			w, closeOut, err := in.openOutput(cmd)
			if err != nil {
				return err
			}
			defer closeOut()
			logger.Info("gc profile",
				zap.Int("length", rep.Length),
				zap.Float64("gc", rep.GCContent),
				zap.Int("points", len(rep.GC)))
			return output.WriteGC(w, rep.GC)
		},
	}

	in.register(cmd)
	cmd.Flags().IntVar(&window, "window", 0, "Window size (0 = adaptive)")
	cmd.Flags().IntVar(&step, "step", 0, "Step size (0 = adaptive)")
	return cmd
}

func newAnalyzeORFsCmd() *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "orfs",
		Short: "Six-frame open reading frames",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := in.input()
			if err != nil {
				return err
			}
			rep := newRunner().Analyze(input, analysis.Request{
				ORFs:     true,
				MinORFAA: viper.GetInt("analysis.min_orf_aa"),
			})
			if err := checkSkipped(rep); err != nil {
				return err
			}

			w, closeOut, err := in.openOutput(cmd)
			if err != nil {
				return err
			}
			defer closeOut()
			logger.Info("orfs found", zap.Int("length", rep.Length), zap.Int("orfs", len(rep.ORFs)))
			return output.WriteORFs(w, rep.ORFs)
		},
	}

	in.register(cmd)
	cmd.Flags().Int("min-aa", analysis.DefaultMinORFAminoAcids, "Minimum ORF length in amino acids")
	_ = viper.BindPFlag("analysis.min_orf_aa", cmd.Flags().Lookup("min-aa"))
	return cmd
}

func newAnalyzeMotifCmd() *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "motif <pattern>...",
		Short: "IUPAC motif search (overlapping matches)",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := in.input()
			if err != nil {
				return err
			}
			patterns := make([]string, len(args))
			for i, a := range args {
				patterns[i] = strings.ToUpper(strings.TrimSpace(a))
			}
			rep := newRunner().Analyze(input, analysis.Request{Motifs: patterns})

			w, closeOut, err := in.openOutput(cmd)
			if err != nil {
				return err
			}
			defer closeOut()
			return output.WriteMotifs(w, rep.Motifs)
		},
	}

	in.register(cmd)
	return cmd
}

// checkSkipped turns analyses skipped by the runner into an error.
func checkSkipped(rep analysis.Report) error {
	if len(rep.Skipped) == 0 {
		return nil
	}
	return fmt.Errorf("%s skipped: sequence of length %d is protein or exceeds the configured limit",
		strings.Join(rep.Skipped, ", "), rep.Length)
}
