package session

import (
	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/scar"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

// Snapshot is the editable state of a block at one point in time.
type Snapshot struct {
	Buffer   sequence.Buffer
	Scars    []scar.Scar
	Features []feature.Feature
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Buffer:   s.Buffer,
		Scars:    scar.CloneAll(s.Scars),
		Features: feature.CloneAll(s.Features),
	}
}
