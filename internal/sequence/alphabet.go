// Package sequence provides the canonical residue buffer for a sequence block.
package sequence

import "strings"

// Type is the kind of residues a buffer holds.
type Type string

// Sequence types.
const (
	DNA     Type = "dna"
	RNA     Type = "rna"
	Protein Type = "protein"
)

// Topology describes whether a sequence is linear or circular.
type Topology string

// Topologies.
const (
	Linear   Topology = "linear"
	Circular Topology = "circular"
)

// IUPAC nucleotide codes and the bases each one stands for.
var IUPAC = map[byte]string{
	'A': "A",
	'C': "C",
	'G': "G",
	'T': "T",
	'U': "T",
	'R': "AG",
	'Y': "CT",
	'S': "CG",
	'W': "AT",
	'K': "GT",
	'M': "AC",
	'B': "CGT",
	'D': "AGT",
	'H': "ACT",
	'V': "ACG",
	'N': "ACGT",
}

const (
	dnaAlphabet     = "ACGTRYSWKMBDHVN"
	rnaAlphabet     = "ACGURYSWKMBDHVN"
	proteinAlphabet = "ACDEFGHIKLMNPQRSTVWYBZXJUO*"
)

// ParseType parses a sequence type name, case-insensitively.
// Returns false if the name is not a known type.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dna", "":
		return DNA, true
	case "rna":
		return RNA, true
	case "protein", "aa", "aminoacid":
		return Protein, true
	}
	return "", false
}

// ParseTopology parses a topology name. Empty input means linear.
func ParseTopology(s string) (Topology, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return Linear, true
	case "circular":
		return Circular, true
	}
	return "", false
}

// Alphabet returns the uppercase residues valid for the type.
func (t Type) Alphabet() string {
	switch t {
	case RNA:
		return rnaAlphabet
	case Protein:
		return proteinAlphabet
	default:
		return dnaAlphabet
	}
}

// IsNucleotide reports whether the type holds nucleotides.
func (t Type) IsNucleotide() bool {
	return t != Protein
}

// Valid reports whether r (either case) is a residue of the type.
func (t Type) Valid(r byte) bool {
	return strings.IndexByte(t.Alphabet(), upper(r)) >= 0
}

// Expand returns the set of bases an IUPAC code stands for, or "" if the
// code is unknown. Lowercase codes are accepted.
func Expand(code byte) string {
	return IUPAC[upper(code)]
}

func upper(r byte) byte {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}

// Normalize uppercases raw text and drops whitespace and digits, which is
// what pasted GenBank ORIGIN blocks and wrapped FASTA lines contain.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == ' ', c == '\t', c == '\n', c == '\r':
			continue
		case c >= '0' && c <= '9':
			continue
		}
		b.WriteByte(upper(c))
	}
	return b.String()
}

// Detect guesses the type of a normalized sequence: protein if any residue
// falls outside the nucleotide alphabets, RNA if it holds U but no T.
func Detect(raw string) Type {
	hasU, hasT := false, false
	for i := 0; i < len(raw); i++ {
		c := upper(raw[i])
		switch c {
		case 'U':
			hasU = true
		case 'T':
			hasT = true
		}
		if strings.IndexByte(dnaAlphabet, c) < 0 && c != 'U' {
			return Protein
		}
	}
	if hasU && !hasT {
		return RNA
	}
	return DNA
}
