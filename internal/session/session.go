// Package session implements the edit state machine for a sequence block:
// it turns clicks and key presses into buffer mutations, records a scar for
// each one, keeps feature coordinates in step and maintains bounded undo and
// redo stacks of full snapshots.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/scar"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

// DefaultMaxHistory is the undo depth used when Options.MaxHistory is zero.
const DefaultMaxHistory = 100

// Named keys handled by Key. Any other single character is a residue.
const (
	KeyBackspace  = "Backspace"
	KeyDelete     = "Delete"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyHome       = "Home"
	KeyEnd        = "End"
	KeyInsert     = "Insert"
)

// Options configures new sessions.
type Options struct {
	MaxHistory int              // undo stack bound, 0 means DefaultMaxHistory
	Clock      func() time.Time // scar timestamp source, nil means time.Now
}

// Session is the single authoritative editor of one sequence block.
// Every method runs to completion under the session lock, so transitions
// never interleave.
type Session struct {
	mu sync.Mutex

	buf        sequence.Buffer
	ledger     *scar.Ledger
	features   []feature.Feature
	undo       []Snapshot
	redo       []Snapshot
	maxHistory int

	state      State
	cursor     int
	insertMode bool
	locked     bool

	logger *zap.Logger
}

// New creates an idle session over buf. Features that do not fit the
// buffer are dropped.
func New(buf sequence.Buffer, features []feature.Feature, opts Options) *Session {
	s := &Session{
		buf:        buf,
		ledger:     scar.NewLedger(),
		features:   feature.Filter(features, buf.Len()),
		maxHistory: opts.MaxHistory,
		logger:     zap.NewNop(),
	}
	if s.maxHistory <= 0 {
		s.maxHistory = DefaultMaxHistory
	}
	if opts.Clock != nil {
		s.ledger.SetClock(opts.Clock)
	}
	return s
}

// SetLogger sets the logger used for rejected operations.
func (s *Session) SetLogger(l *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = l.With(zap.String("block", s.buf.ID))
}

// ID returns the block id.
func (s *Session) ID() string {
	return s.buf.ID
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(true, nil)
}

// Snapshot returns a deep copy of the buffer, scars and features.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// UndoDepth returns the number of undoable edits.
func (s *Session) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo)
}

// RedoDepth returns the number of redoable edits.
func (s *Session) RedoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo)
}

// Activate makes the session the editing target.
func (s *Session) Activate() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Editing
	return s.view(true, nil)
}

// Blur returns the session to Idle.
func (s *Session) Blur() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
	return s.view(true, nil)
}

// SetLocked flags the buffer as read-only. Navigation stays available.
func (s *Session) SetLocked(locked bool) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = locked
	return s.view(true, nil)
}

// Click activates the session and moves the cursor to pos, clamped to the
// sequence bounds.
func (s *Session) Click(pos int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Editing
	s.cursor = s.buf.Clamp(pos)
	return s.view(true, nil)
}

// ToggleInsertMode flips between insert and substitute mode. Only later
// key presses are affected.
func (s *Session) ToggleInsertMode() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertMode = !s.insertMode
	return s.view(true, nil)
}

// Key handles a key press at the cursor.
func (s *Session) Key(key string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Editing {
		return s.reject("key", ErrInactive)
	}

	switch key {
	case KeyArrowLeft:
		return s.moveTo(s.cursor - 1)
	case KeyArrowRight:
		return s.moveTo(s.cursor + 1)
	case KeyHome:
		return s.moveTo(0)
	case KeyEnd:
		return s.moveTo(s.buf.Len())
	case KeyInsert:
		s.insertMode = !s.insertMode
		return s.view(true, nil)
	case KeyBackspace:
		if s.locked {
			return s.reject("backspace", ErrLockedBuffer)
		}
		if s.cursor == 0 {
			return s.reject("backspace", ErrNotFound)
		}
		s.deleteSpan(s.cursor-1, s.cursor)
		s.cursor--
		return s.view(true, nil)
	case KeyDelete:
		if s.locked {
			return s.reject("delete", ErrLockedBuffer)
		}
		if s.cursor >= s.buf.Len() {
			return s.reject("delete", ErrNotFound)
		}
		s.deleteSpan(s.cursor, s.cursor+1)
		return s.view(true, nil)
	}

	if utf8.RuneCountInString(key) != 1 {
		// modifiers and other named keys
		return s.view(false, nil)
	}
	return s.write("key", key)
}

// Paste writes text at the cursor as a single undoable edit. Whitespace and
// digits are stripped first.
func (s *Session) Paste(text string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Editing {
		return s.reject("paste", ErrInactive)
	}
	text = sequence.Normalize(text)
	if text == "" {
		return s.view(false, nil)
	}
	return s.write("paste", text)
}

// DeleteRange removes the residues in [start, end) as one edit and puts the
// cursor at start. Bounds are clamped.
func (s *Session) DeleteRange(start, end int) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return s.reject("delete range", ErrLockedBuffer)
	}
	start, end = s.buf.Clamp(start), s.buf.Clamp(end)
	if start > end {
		start, end = end, start
	}
	if start == end {
		return s.reject("delete range", ErrNotFound)
	}
	s.deleteSpan(start, end)
	s.cursor = start
	return s.view(true, nil)
}

// Undo restores the state before the most recent edit.
func (s *Session) Undo() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return s.reject("undo", ErrLockedBuffer)
	}
	if len(s.undo) == 0 {
		return s.reject("undo", ErrNotFound)
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.snapshot())
	s.restore(prev)
	return s.view(true, nil)
}

// Redo re-applies the most recently undone edit.
func (s *Session) Redo() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return s.reject("redo", ErrLockedBuffer)
	}
	if len(s.redo) == 0 {
		return s.reject("redo", ErrNotFound)
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.snapshot())
	s.restore(next)
	return s.view(true, nil)
}

// Replace swaps in snap wholesale without touching the undo and redo
// stacks. Checkpoint restore goes through here.
func (s *Session) Replace(snap Snapshot) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.admit(snap)
	if err != nil {
		return s.reject("replace", err)
	}
	s.restore(snap)
	return s.view(true, nil)
}

// Apply swaps in snap wholesale as an undoable edit.
func (s *Session) Apply(snap Snapshot) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.admit(snap)
	if err != nil {
		return s.reject("apply", err)
	}
	s.pushHistory()
	s.restore(snap)
	return s.view(true, nil)
}

// Transform derives a new state from the current one and applies it as an
// undoable edit. fn runs under the session lock; an error from fn rejects
// the edit.
func (s *Session) Transform(op string, fn func(Snapshot) (Snapshot, error)) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return s.reject(op, ErrLockedBuffer)
	}
	next, err := fn(s.snapshot())
	if err != nil {
		return s.reject(op, err)
	}
	next, err = s.admit(next)
	if err != nil {
		return s.reject(op, err)
	}
	s.pushHistory()
	s.restore(next)
	return s.view(true, nil)
}

// AddFeature annotates a range. A missing or clashing id is replaced with a
// fresh one; a zero strand, empty type or empty color gets its default.
func (s *Session) AddFeature(f feature.Feature) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return s.reject("add feature", ErrLockedBuffer)
	}
	f = f.Clone().WithDefaults()
	if err := featureError(f.Check(s.buf.Len())); err != nil {
		return s.reject("add feature", err)
	}
	if f.ID == "" || s.featureIndex(f.ID) >= 0 {
		f.ID = uuid.NewString()
	}
	s.pushHistory()
	s.features = append(s.features, f)
	return s.view(true, nil)
}

// UpdateFeature replaces the feature with the same id, e.g. to rename or
// retype it.
func (s *Session) UpdateFeature(f feature.Feature) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return s.reject("update feature", ErrLockedBuffer)
	}
	i := s.featureIndex(f.ID)
	if i < 0 {
		return s.reject("update feature", ErrNotFound)
	}
	if err := featureError(f.Check(s.buf.Len())); err != nil {
		return s.reject("update feature", err)
	}
	s.pushHistory()
	s.features[i] = f.Clone()
	return s.view(true, nil)
}

// RemoveFeature deletes the feature with the given id.
func (s *Session) RemoveFeature(id string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return s.reject("remove feature", ErrLockedBuffer)
	}
	i := s.featureIndex(id)
	if i < 0 {
		return s.reject("remove feature", ErrNotFound)
	}
	s.pushHistory()
	s.features = append(s.features[:i:i], s.features[i+1:]...)
	return s.view(true, nil)
}

// write types text at the cursor in the current mode. Substitute mode
// overwrites residues up to the end of the sequence and appends the rest.
func (s *Session) write(op, text string) View {
	if s.locked {
		return s.reject(op, ErrLockedBuffer)
	}
	if err := sequence.ValidateResidues(text, s.buf.Type, s.cursor); err != nil {
		return s.reject(op, fmt.Errorf("%w: %w", ErrInvalidResidue, err))
	}
	text = strings.ToUpper(text)

	s.pushHistory()
	pos := s.cursor
	if s.insertMode {
		s.insertAt(pos, text)
	} else {
		n := min(len(text), s.buf.Len()-pos)
		if n > 0 {
			original := s.buf.Raw[pos : pos+n]
			s.buf = s.buf.Substitute(pos, text[:n])
			s.ledger.Append(scar.Substitution, pos, original, text[:n])
		}
		if n < len(text) {
			s.insertAt(pos+n, text[n:])
		}
	}
	s.cursor = pos + len(text)
	return s.view(true, nil)
}

func (s *Session) insertAt(pos int, text string) {
	s.buf = s.buf.Insert(pos, text)
	sc := s.ledger.Append(scar.Insertion, pos, "", text)
	s.features = feature.Adjust(s.features, pos, sc.Delta())
}

func (s *Session) deleteSpan(start, end int) {
	s.pushHistory()
	original := s.buf.Raw[start:end]
	s.buf = s.buf.Delete(start, end)
	sc := s.ledger.Append(scar.Deletion, start, original, "")
	s.features = feature.Adjust(s.features, start, sc.Delta())
}

func (s *Session) moveTo(pos int) View {
	s.cursor = s.buf.Clamp(pos)
	return s.view(true, nil)
}

// admit validates an incoming snapshot against the session.
func (s *Session) admit(snap Snapshot) (Snapshot, error) {
	if s.locked {
		return Snapshot{}, ErrLockedBuffer
	}
	snap = snap.Clone()
	snap.Buffer.ID = s.buf.ID
	if snap.Buffer.Type == "" {
		snap.Buffer.Type = s.buf.Type
	}
	if snap.Buffer.Topology == "" {
		snap.Buffer.Topology = s.buf.Topology
	}
	snap.Buffer.Raw = strings.ToUpper(snap.Buffer.Raw)
	if err := snap.Buffer.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidResidue, err)
	}
	if err := checkFeatures(snap.Features, snap.Buffer.Len()); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Session) pushHistory() {
	s.undo = append(s.undo, s.snapshot())
	if len(s.undo) > s.maxHistory {
		s.undo = append([]Snapshot(nil), s.undo[len(s.undo)-s.maxHistory:]...)
	}
	s.redo = nil
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Buffer:   s.buf,
		Scars:    s.ledger.Scars(),
		Features: feature.CloneAll(s.features),
	}
}

func (s *Session) restore(snap Snapshot) {
	s.buf = snap.Buffer
	s.ledger.Replace(snap.Scars)
	s.features = feature.Filter(snap.Features, snap.Buffer.Len())
	s.cursor = s.buf.Clamp(s.cursor)
}

func (s *Session) featureIndex(id string) int {
	for i, f := range s.features {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) reject(op string, reason error) View {
	s.logger.Debug("operation rejected",
		zap.String("op", op),
		zap.Int("cursor", s.cursor),
		zap.Error(reason))
	return s.view(false, reason)
}

func (s *Session) view(applied bool, reason error) View {
	return View{
		BlockID:      s.buf.ID,
		Raw:          s.buf.Raw,
		SequenceType: s.buf.Type,
		Topology:     s.buf.Topology,
		Scars:        s.ledger.Scars(),
		Features:     feature.CloneAll(s.features),
		Cursor:       s.cursor,
		InsertMode:   s.insertMode,
		State:        s.state,
		Locked:       s.locked,
		CanUndo:      len(s.undo) > 0,
		CanRedo:      len(s.redo) > 0,
		Applied:      applied,
		Rejection:    reason,
	}
}
