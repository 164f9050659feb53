// Package scar records the mutations applied to a sequence buffer.
package scar

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Kind is the type of an edit.
type Kind string

// Scar kinds.
const (
	Substitution Kind = "substitution"
	Insertion    Kind = "insertion"
	Deletion     Kind = "deletion"
)

// Scar is an immutable record of one atomic edit.
type Scar struct {
	ID        string
	Position  int    // offset into the sequence when the edit was made
	Kind      Kind
	Original  string // residues removed or replaced
	Inserted  string // residues added (substitution and insertion only)
	CreatedAt time.Time
}

// Clone returns a value copy of the scar.
func (s Scar) Clone() Scar {
	return s
}

// Delta returns the change in sequence length caused by the edit.
func (s Scar) Delta() int {
	switch s.Kind {
	case Insertion:
		return len(s.Inserted)
	case Deletion:
		return -len(s.Original)
	default:
		return len(s.Inserted) - len(s.Original)
	}
}

// Describe returns a short changelog line such as "A12G", "ins 5 CCC" or "del 7 T".
func (s Scar) Describe() string {
	switch s.Kind {
	case Substitution:
		if len(s.Original) == 1 && len(s.Inserted) == 1 {
			return s.Original + strconv.Itoa(s.Position+1) + s.Inserted
		}
		return "sub " + strconv.Itoa(s.Position+1) + " " + s.Original + ">" + s.Inserted
	case Insertion:
		return "ins " + strconv.Itoa(s.Position+1) + " " + s.Inserted
	case Deletion:
		return "del " + strconv.Itoa(s.Position+1) + " " + s.Original
	}
	return string(s.Kind)
}

// CloneAll returns a copy of scars that shares nothing with the input.
func CloneAll(scars []Scar) []Scar {
	if scars == nil {
		return nil
	}
	out := make([]Scar, len(scars))
	copy(out, scars)
	return out
}

func newID() string {
	return uuid.NewString()
}
