// Package editor is the external interface of the engine. Every entry point
// is keyed by block id and returns the resulting session.View; unknown
// blocks yield a view rejected with session.ErrNotFound.
package editor

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-seqedit/internal/analysis"
	"github.com/inodb/vibe-seqedit/internal/checkpoint"
	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/manip"
	"github.com/inodb/vibe-seqedit/internal/scar"
	"github.com/inodb/vibe-seqedit/internal/sequence"
	"github.com/inodb/vibe-seqedit/internal/session"
)

// Options configures an Editor.
type Options struct {
	Session  session.Options
	Limits   analysis.Limits
	MinORFAA int
	Workers  int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Limits:   analysis.DefaultLimits(),
		MinORFAA: analysis.DefaultMinORFAminoAcids,
	}
}

// Editor wires sessions, checkpoints and analyses together.
type Editor struct {
	sessions    *session.Registry
	checkpoints *checkpoint.Manager
	runner      *analysis.Runner
	logger      *zap.Logger
}

// New creates an editor with no open blocks.
func New(opts Options) *Editor {
	r := session.NewRegistry(opts.Session)
	return &Editor{
		sessions:    r,
		checkpoints: checkpoint.NewManager(r),
		runner:      analysis.NewRunner(opts.Limits, opts.MinORFAA, opts.Workers),
		logger:      zap.NewNop(),
	}
}

// SetLogger sets the logger for the editor and its components.
func (e *Editor) SetLogger(l *zap.Logger) {
	e.logger = l
	e.sessions.SetLogger(l.Named("session"))
	e.checkpoints.SetLogger(l.Named("checkpoint"))
	e.runner.SetLogger(l.Named("analysis"))
}

// SetCheckpointStore enables write-through checkpoint persistence.
func (e *Editor) SetCheckpointStore(s checkpoint.Store) {
	e.checkpoints.SetStore(s)
}

// Open starts a session for buf. Features outside the buffer are dropped.
func (e *Editor) Open(buf sequence.Buffer, features []feature.Feature) session.View {
	s, err := e.sessions.Open(buf, features)
	if err != nil {
		e.logger.Debug("open rejected", zap.String("block", buf.ID), zap.Error(err))
		return session.Rejected(buf.ID, err)
	}
	return s.View()
}

// Close ends a block's session. Its checkpoints are kept.
func (e *Editor) Close(blockID string) bool {
	return e.sessions.Close(blockID)
}

// Blocks returns the ids of the open blocks.
func (e *Editor) Blocks() []string {
	return e.sessions.IDs()
}

// View returns the current state of a block.
func (e *Editor) View(blockID string) session.View {
	return e.with(blockID, (*session.Session).View)
}

// Activate starts editing without moving the cursor.
func (e *Editor) Activate(blockID string) session.View {
	return e.with(blockID, (*session.Session).Activate)
}

// ApplyClick places the cursor and starts editing.
func (e *Editor) ApplyClick(blockID string, pos int) session.View {
	return e.with(blockID, func(s *session.Session) session.View { return s.Click(pos) })
}

// ApplyKey handles one key press.
func (e *Editor) ApplyKey(blockID, key string) session.View {
	return e.with(blockID, func(s *session.Session) session.View { return s.Key(key) })
}

// Paste applies text at the cursor as one edit.
func (e *Editor) Paste(blockID, text string) session.View {
	return e.with(blockID, func(s *session.Session) session.View { return s.Paste(text) })
}

// DeleteRange deletes the selection [start, end).
func (e *Editor) DeleteRange(blockID string, start, end int) session.View {
	return e.with(blockID, func(s *session.Session) session.View { return s.DeleteRange(start, end) })
}

// ToggleInsertMode switches between insert and substitute mode.
func (e *Editor) ToggleInsertMode(blockID string) session.View {
	return e.with(blockID, (*session.Session).ToggleInsertMode)
}

// Undo reverts the last edit.
func (e *Editor) Undo(blockID string) session.View {
	return e.with(blockID, (*session.Session).Undo)
}

// Redo reapplies the last undone edit.
func (e *Editor) Redo(blockID string) session.View {
	return e.with(blockID, (*session.Session).Redo)
}

// SetLocked locks or unlocks a block against mutation.
func (e *Editor) SetLocked(blockID string, locked bool) session.View {
	return e.with(blockID, func(s *session.Session) session.View { return s.SetLocked(locked) })
}

// Blur ends editing.
func (e *Editor) Blur(blockID string) session.View {
	return e.with(blockID, (*session.Session).Blur)
}

// ApplyMutationSnapshot hard-resets a block to an externally produced
// state. Undo and redo history are left alone. Raw is upper-cased and
// validated against the block's sequence type; nothing is stripped, so
// feature coordinates stay aligned with the text given.
func (e *Editor) ApplyMutationSnapshot(blockID, raw string, scars []scar.Scar, features []feature.Feature) session.View {
	return e.with(blockID, func(s *session.Session) session.View {
		cur := s.Snapshot()
		cur.Buffer.Raw = strings.ToUpper(raw)
		cur.Scars = scars
		cur.Features = features
		return s.Replace(cur)
	})
}

// CreateCheckpoint snapshots a block. Returns "" for an unknown block.
func (e *Editor) CreateCheckpoint(blockID, label string) string {
	return e.checkpoints.Create(blockID, label)
}

// RestoreCheckpoint resets the checkpoint's block to it.
func (e *Editor) RestoreCheckpoint(id string) (session.View, bool) {
	return e.checkpoints.Restore(id)
}

// DeleteCheckpoint removes a checkpoint.
func (e *Editor) DeleteCheckpoint(id string) bool {
	return e.checkpoints.Delete(id)
}

// ListCheckpoints returns a block's checkpoints, newest first.
func (e *Editor) ListCheckpoints(blockID string) []checkpoint.Checkpoint {
	return e.checkpoints.List(blockID)
}

// FindCheckpoint returns the newest checkpoint of a block with the given
// label.
func (e *Editor) FindCheckpoint(blockID, label string) (checkpoint.Checkpoint, bool) {
	for _, cp := range e.checkpoints.List(blockID) {
		if cp.Label == label {
			return cp, true
		}
	}
	return checkpoint.Checkpoint{}, false
}

// LoadCheckpoints pulls a block's persisted checkpoints from the store.
func (e *Editor) LoadCheckpoints(ctx context.Context, blockID string) (int, error) {
	return e.checkpoints.Load(ctx, blockID)
}

// AddFeature annotates a range of a block.
func (e *Editor) AddFeature(blockID string, f feature.Feature) session.View {
	return e.with(blockID, func(s *session.Session) session.View { return s.AddFeature(f) })
}

// UpdateFeature replaces the feature with the same id.
func (e *Editor) UpdateFeature(blockID string, f feature.Feature) session.View {
	return e.with(blockID, func(s *session.Session) session.View { return s.UpdateFeature(f) })
}

// RemoveFeature deletes a feature by id.
func (e *Editor) RemoveFeature(blockID, featureID string) session.View {
	return e.with(blockID, func(s *session.Session) session.View { return s.RemoveFeature(featureID) })
}

// FeaturesAt returns the block's features covering pos, ordered by start.
func (e *Editor) FeaturesAt(blockID string, pos int) []feature.Feature {
	s, ok := e.sessions.Get(blockID)
	if !ok {
		return nil
	}
	return feature.BuildIndex(s.Snapshot().Features).At(pos)
}

// ReverseComplement replaces a nucleotide block with its reverse
// complement as one undoable edit.
func (e *Editor) ReverseComplement(blockID string) session.View {
	return e.with(blockID, func(s *session.Session) session.View {
		return s.Transform("reverse_complement", func(cur session.Snapshot) (session.Snapshot, error) {
			buf, fs, err := manip.ReverseComplement(cur.Buffer, cur.Features)
			if err != nil {
				return session.Snapshot{}, err
			}
			cur.Buffer, cur.Features = buf, fs
			return cur, nil
		})
	})
}

// Rotate moves the origin of a circular block as one undoable edit.
func (e *Editor) Rotate(blockID string, origin int) session.View {
	return e.with(blockID, func(s *session.Session) session.View {
		return s.Transform("rotate", func(cur session.Snapshot) (session.Snapshot, error) {
			buf, fs, err := manip.Rotate(cur.Buffer, cur.Features, origin)
			if err != nil {
				return session.Snapshot{}, err
			}
			cur.Buffer, cur.Features = buf, fs
			return cur, nil
		})
	})
}

// Analyze runs analyses over the block's current sequence. Returns false
// for an unknown block.
func (e *Editor) Analyze(blockID string, req analysis.Request) (analysis.Report, bool) {
	s, ok := e.sessions.Get(blockID)
	if !ok {
		return analysis.Report{}, false
	}
	buf := s.Snapshot().Buffer
	return e.runner.Analyze(analysis.Input{Raw: buf.Raw, Type: buf.Type}, req), true
}

func (e *Editor) with(blockID string, fn func(*session.Session) session.View) session.View {
	s, ok := e.sessions.Get(blockID)
	if !ok {
		return session.Rejected(blockID, session.ErrNotFound)
	}
	return fn(s)
}
