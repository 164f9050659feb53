package session

import (
	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/scar"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

// State is the edit state of a session.
type State int

// Session states.
const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// View is what every session entry point returns: the resulting state plus
// whether the requested operation was applied.
type View struct {
	BlockID      string
	Raw          string
	SequenceType sequence.Type
	Topology     sequence.Topology
	Scars        []scar.Scar
	Features     []feature.Feature
	Cursor       int
	InsertMode   bool
	State        State
	Locked       bool
	CanUndo      bool
	CanRedo      bool

	// Applied is false when the operation was a no-op; Rejection then holds
	// the reason (ErrInvalidResidue, ErrLockedBuffer, ...) or nil for input
	// that is simply ignored.
	Applied   bool
	Rejection error
}

// Rejected returns a view for a block without a session.
func Rejected(blockID string, reason error) View {
	return View{BlockID: blockID, Rejection: reason}
}
