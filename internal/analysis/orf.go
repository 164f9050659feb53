package analysis

import (
	"sort"

	"github.com/bebop/poly/transform"
)

// ORF is an open reading frame. Start and End are half-open forward-strand
// coordinates for both strands; End includes the stop codon when present.
type ORF struct {
	Start      int
	End        int
	Strand     int // +1 or -1
	Frame      int // 1, 2 or 3, counted from the 5' end of the strand
	StartCodon string
	StopCodon  string // empty when the ORF runs off the end of the sequence
	AminoAcids int    // translated length, excluding the stop
	Protein    string
}

// Truncated reports whether the ORF has no stop codon.
func (o ORF) Truncated() bool {
	return o.StopCodon == ""
}

// Len returns the ORF length in nucleotides.
func (o ORF) Len() int {
	return o.End - o.Start
}

// FindORFs scans all six reading frames for ATG-initiated ORFs that reach
// at least minAminoAcids residues. Within a frame ORFs do not nest: the scan
// resumes after each stop codon. An ORF without an in-frame stop runs to the
// last complete codon and has an empty StopCodon.
//
// Results are ordered by Start, then forward strand first, then Frame.
func FindORFs(seq string, minAminoAcids int) []ORF {
	dna := toDNA(seq)
	n := len(dna)

	orfs := scanStrand(dna, 1, minAminoAcids)
	for _, o := range scanStrand(transform.ReverseComplement(dna), -1, minAminoAcids) {
		o.Start, o.End = n-o.End, n-o.Start
		orfs = append(orfs, o)
	}

	sort.Slice(orfs, func(i, j int) bool {
		a, b := orfs[i], orfs[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Strand != b.Strand {
			return a.Strand > b.Strand
		}
		return a.Frame < b.Frame
	})
	return orfs
}

// scanStrand finds ORFs in strand-local coordinates.
func scanStrand(seq string, strand, minAminoAcids int) []ORF {
	var orfs []ORF

	emit := func(frame, start, end int, stop string) {
		coding := end
		if stop != "" {
			coding -= 3
		}
		aa := (coding - start) / 3
		if aa < minAminoAcids {
			return
		}
		orfs = append(orfs, ORF{
			Start:      start,
			End:        end,
			Strand:     strand,
			Frame:      frame,
			StartCodon: seq[start : start+3],
			StopCodon:  stop,
			AminoAcids: aa,
			Protein:    TranslateSequence(seq[start:coding]),
		})
	}

	for offset := 0; offset < 3; offset++ {
		start := -1
		for i := offset; i+3 <= len(seq); i += 3 {
			codon := seq[i : i+3]
			if start < 0 {
				if IsStartCodon(codon) {
					start = i
				}
				continue
			}
			if IsStopCodon(codon) {
				emit(offset+1, start, i+3, codon)
				start = -1
			}
		}
		if start >= 0 {
			emit(offset+1, start, start+((len(seq)-start)/3)*3, "")
		}
	}
	return orfs
}
