package output

import (
	"io"
	"strconv"
	"time"

	"github.com/inodb/vibe-seqedit/internal/analysis"
	"github.com/inodb/vibe-seqedit/internal/checkpoint"
	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/scar"
)

// Positions are written 1-based and inclusive, as sequence viewers show
// them. Internally everything is 0-based half-open.

// WriteORFs writes one row per ORF.
func WriteORFs(w io.Writer, orfs []analysis.ORF) error {
	tw := NewTabWriter(w, "Start", "End", "Strand", "Frame", "Length_nt", "Length_aa", "Start_codon", "Stop_codon", "Protein")
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, o := range orfs {
		if err := tw.WriteRow(
			strconv.Itoa(o.Start+1),
			strconv.Itoa(o.End),
			strand(o.Strand),
			strconv.Itoa(o.Frame),
			strconv.Itoa(o.Len()),
			strconv.Itoa(o.AminoAcids),
			o.StartCodon,
			o.StopCodon,
			o.Protein,
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteGC writes one row per GC window.
func WriteGC(w io.Writer, points []analysis.GCPoint) error {
	tw := NewTabWriter(w, "Position", "GC")
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, p := range points {
		if err := tw.WriteRow(strconv.Itoa(p.Position+1), strconv.FormatFloat(p.GC, 'f', 4, 64)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteMotifs writes one row per motif match.
func WriteMotifs(w io.Writer, hits []analysis.MotifHits) error {
	tw := NewTabWriter(w, "Pattern", "Start", "End")
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, h := range hits {
		for _, m := range h.Matches {
			if err := tw.WriteRow(h.Pattern, strconv.Itoa(m.Start+1), strconv.Itoa(m.End)); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

// WriteScars writes the changelog, most recent edit first.
func WriteScars(w io.Writer, scars []scar.Scar) error {
	tw := NewTabWriter(w, "Time", "Kind", "Position", "Original", "Inserted", "Change")
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, s := range scar.Recent(scars) {
		if err := tw.WriteRow(
			s.CreatedAt.UTC().Format(time.RFC3339Nano),
			string(s.Kind),
			strconv.Itoa(s.Position+1),
			s.Original,
			s.Inserted,
			s.Describe(),
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteFeatures writes one row per feature.
func WriteFeatures(w io.Writer, features []feature.Feature) error {
	tw := NewTabWriter(w, "Name", "Type", "Start", "End", "Strand", "Color", "ID")
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, f := range features {
		if err := tw.WriteRow(
			f.Name,
			string(f.Type),
			strconv.Itoa(f.Start+1),
			strconv.Itoa(f.End),
			strand(int(f.Strand)),
			f.Color,
			f.ID,
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteCheckpoints writes one row per checkpoint.
func WriteCheckpoints(w io.Writer, cps []checkpoint.Checkpoint) error {
	tw := NewTabWriter(w, "ID", "Block", "Label", "Created", "Length", "Type", "Topology", "Features", "Scars")
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, c := range cps {
		if err := tw.WriteRow(
			c.ID,
			c.BlockID,
			c.Label,
			c.Timestamp.Format(checkpoint.LabelLayout),
			strconv.Itoa(len(c.Raw)),
			string(c.SequenceType),
			string(c.Topology),
			strconv.Itoa(len(c.Features)),
			strconv.Itoa(len(c.Scars)),
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func strand(s int) string {
	if s < 0 {
		return "-"
	}
	return "+"
}
