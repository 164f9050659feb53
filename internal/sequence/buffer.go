package sequence

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidResidue is returned when a character is outside a buffer's alphabet.
var ErrInvalidResidue = errors.New("invalid residue")

// ResidueError describes the first invalid residue found in a sequence.
type ResidueError struct {
	Residue  rune
	Position int
	Type     Type
}

func (e *ResidueError) Error() string {
	return fmt.Sprintf("invalid %s residue %q at position %d", e.Type, e.Residue, e.Position)
}

func (e *ResidueError) Unwrap() error {
	return ErrInvalidResidue
}

// Buffer is the canonical residue sequence of a block.
// Buffers are values: edit methods return a new Buffer and leave the receiver untouched.
type Buffer struct {
	ID       string
	Raw      string
	Type     Type
	Topology Topology
}

// New normalizes raw and returns a validated buffer.
func New(id, raw string, t Type, topo Topology) (Buffer, error) {
	if t == "" {
		t = DNA
	}
	if topo == "" {
		topo = Linear
	}
	b := Buffer{ID: id, Raw: Normalize(raw), Type: t, Topology: topo}
	if err := b.Validate(); err != nil {
		return Buffer{}, err
	}
	return b, nil
}

// Len returns the number of residues.
func (b Buffer) Len() int {
	return len(b.Raw)
}

// IsCircular reports whether the buffer is circular.
func (b Buffer) IsCircular() bool {
	return b.Topology == Circular
}

// Validate checks every residue against the buffer's alphabet.
func (b Buffer) Validate() error {
	return ValidateResidues(b.Raw, b.Type, 0)
}

// ValidateResidues checks s against the alphabet of t. offset is added to
// the reported position.
func ValidateResidues(s string, t Type, offset int) error {
	for i := 0; i < len(s); i++ {
		if !t.Valid(s[i]) {
			r, _ := utf8.DecodeRuneInString(s[i:])
			return &ResidueError{Residue: r, Position: offset + i, Type: t}
		}
	}
	return nil
}

// Substitute replaces the residues starting at pos with s.
// The caller guarantees pos+len(s) <= Len().
func (b Buffer) Substitute(pos int, s string) Buffer {
	b.Raw = b.Raw[:pos] + strings.ToUpper(s) + b.Raw[pos+len(s):]
	return b
}

// Insert inserts s before the residue at pos.
func (b Buffer) Insert(pos int, s string) Buffer {
	b.Raw = b.Raw[:pos] + strings.ToUpper(s) + b.Raw[pos:]
	return b
}

// Delete removes residues in [start, end).
func (b Buffer) Delete(start, end int) Buffer {
	b.Raw = b.Raw[:start] + b.Raw[end:]
	return b
}

// Clamp limits pos to [0, Len()].
func (b Buffer) Clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.Raw) {
		return len(b.Raw)
	}
	return pos
}
