package analysis

import "github.com/inodb/vibe-seqedit/internal/sequence"

// Match is a half-open [Start, End) motif hit.
type Match struct {
	Start int
	End   int
}

// pattern holds, per position, the set of residues accepted there.
type pattern [][256]bool

func compileNucleotide(p string) pattern {
	out := make(pattern, len(p))
	for i := 0; i < len(p); i++ {
		bases := sequence.Expand(p[i])
		if bases == "" {
			// not an IUPAC code: literal, either case
			c := upperByte(p[i])
			out[i][c] = true
			continue
		}
		for j := 0; j < len(bases); j++ {
			out[i][bases[j]] = true
		}
	}
	return out
}

func compileProtein(p string) pattern {
	out := make(pattern, len(p))
	for i := 0; i < len(p); i++ {
		c := upperByte(p[i])
		if c == 'X' {
			for r := range out[i] {
				out[i][r] = true
			}
			continue
		}
		out[i][c] = true
	}
	return out
}

// FindMotif returns every (possibly overlapping) occurrence of an IUPAC
// pattern in a nucleotide sequence. Each pattern code matches any residue
// in its base set (N matches any base, R matches A or G). Matching is
// case-insensitive, reads U as T and never wraps around the origin.
func FindMotif(seq, p string) []Match {
	return FindMotifIn(seq, p, sequence.DNA)
}

// FindMotifIn is FindMotif for a typed sequence. In protein sequences
// pattern characters match literally, except X which matches any residue.
func FindMotifIn(seq, p string, t sequence.Type) []Match {
	if len(p) == 0 || len(p) > len(seq) {
		return nil
	}

	var pat pattern
	normalize := upperByte
	if t.IsNucleotide() {
		pat = compileNucleotide(p)
		normalize = func(c byte) byte {
			c = upperByte(c)
			if c == 'U' {
				return 'T'
			}
			return c
		}
	} else {
		pat = compileProtein(p)
	}

	var matches []Match
outer:
	for start := 0; start+len(pat) <= len(seq); start++ {
		for i := range pat {
			if !pat[i][normalize(seq[start+i])] {
				continue outer
			}
		}
		matches = append(matches, Match{Start: start, End: start + len(pat)})
	}
	return matches
}

func upperByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
