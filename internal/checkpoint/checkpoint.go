// Package checkpoint keeps named, restorable snapshots of sequence blocks.
package checkpoint

import (
	"time"

	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/scar"
	"github.com/inodb/vibe-seqedit/internal/sequence"
	"github.com/inodb/vibe-seqedit/internal/session"
)

// LabelLayout formats the default label of a checkpoint.
const LabelLayout = "2006-01-02 15:04:05"

// Checkpoint is an immutable full copy of a block's editable state.
type Checkpoint struct {
	ID           string
	BlockID      string
	Label        string
	Timestamp    time.Time
	Raw          string
	SequenceType sequence.Type
	Topology     sequence.Topology
	Features     []feature.Feature
	Scars        []scar.Scar
}

// Clone returns a deep copy.
func (c Checkpoint) Clone() Checkpoint {
	c.Features = feature.CloneAll(c.Features)
	c.Scars = scar.CloneAll(c.Scars)
	return c
}

// Snapshot converts the checkpoint into a session snapshot.
func (c Checkpoint) Snapshot() session.Snapshot {
	return session.Snapshot{
		Buffer: sequence.Buffer{
			ID:       c.BlockID,
			Raw:      c.Raw,
			Type:     c.SequenceType,
			Topology: c.Topology,
		},
		Scars:    scar.CloneAll(c.Scars),
		Features: feature.CloneAll(c.Features),
	}
}

func fromSnapshot(id, label string, ts time.Time, snap session.Snapshot) Checkpoint {
	if label == "" {
		label = ts.Format(LabelLayout)
	}
	return Checkpoint{
		ID:           id,
		BlockID:      snap.Buffer.ID,
		Label:        label,
		Timestamp:    ts,
		Raw:          snap.Buffer.Raw,
		SequenceType: snap.Buffer.Type,
		Topology:     snap.Buffer.Topology,
		Features:     feature.CloneAll(snap.Features),
		Scars:        scar.CloneAll(snap.Scars),
	}
}
