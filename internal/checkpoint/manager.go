package checkpoint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/vibe-seqedit/internal/session"
)

// Store persists checkpoints outside the process.
type Store interface {
	SaveCheckpoint(ctx context.Context, c Checkpoint) error
	DeleteCheckpoint(ctx context.Context, id string) error
	ListCheckpoints(ctx context.Context, blockID string) ([]Checkpoint, error)
}

type entry struct {
	cp  Checkpoint
	seq int
}

// Manager creates, restores and deletes checkpoints for the sessions of a
// registry. Checkpoints are independent of undo/redo history.
type Manager struct {
	mu       sync.Mutex
	sessions *session.Registry
	entries  map[string]entry
	nextSeq  int
	store    Store
	clock    func() time.Time
	logger   *zap.Logger
}

// NewManager creates a manager over the sessions in r.
func NewManager(r *session.Registry) *Manager {
	return &Manager{
		sessions: r,
		entries:  make(map[string]entry),
		clock:    time.Now,
		logger:   zap.NewNop(),
	}
}

// SetStore enables write-through persistence.
func (m *Manager) SetStore(s Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s
}

// SetLogger sets the logger for store failures.
func (m *Manager) SetLogger(l *zap.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = l
}

// SetClock overrides the checkpoint timestamp source.
func (m *Manager) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

// Create snapshots the block's current state and returns the checkpoint id,
// or "" if the block has no session. An empty label defaults to the
// creation time.
func (m *Manager) Create(blockID, label string) string {
	s, ok := m.sessions.Get(blockID)
	if !ok {
		return ""
	}
	snap := s.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := fromSnapshot(uuid.NewString(), label, m.clock(), snap)
	m.add(cp)

	if m.store != nil {
		if err := m.store.SaveCheckpoint(context.Background(), cp.Clone()); err != nil {
			m.logger.Warn("failed to persist checkpoint",
				zap.String("block", blockID),
				zap.String("checkpoint", cp.ID),
				zap.Error(err))
		}
	}
	return cp.ID
}

// Restore resets the checkpoint's block to the checkpoint state without
// touching its undo and redo stacks. Returns false if the checkpoint or the
// block's session does not exist, or if the session rejected the restore.
func (m *Manager) Restore(id string) (session.View, bool) {
	m.mu.Lock()
	e, ok := m.entries[id]
	m.mu.Unlock()
	if !ok {
		return session.Rejected("", session.ErrNotFound), false
	}

	s, ok := m.sessions.Get(e.cp.BlockID)
	if !ok {
		return session.Rejected(e.cp.BlockID, session.ErrNotFound), false
	}
	v := s.Replace(e.cp.Snapshot())
	return v, v.Applied
}

// Delete removes a checkpoint. Returns false if it did not exist.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return false
	}
	delete(m.entries, id)

	if m.store != nil {
		if err := m.store.DeleteCheckpoint(context.Background(), id); err != nil {
			m.logger.Warn("failed to delete persisted checkpoint",
				zap.String("checkpoint", id),
				zap.Error(err))
		}
	}
	return true
}

// Get returns a copy of a checkpoint.
func (m *Manager) Get(id string) (Checkpoint, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return Checkpoint{}, false
	}
	return e.cp.Clone(), true
}

// List returns copies of a block's checkpoints, newest first.
func (m *Manager) List(blockID string) []Checkpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []entry
	for _, e := range m.entries {
		if e.cp.BlockID == blockID {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].cp.Timestamp.Equal(matched[j].cp.Timestamp) {
			return matched[i].cp.Timestamp.After(matched[j].cp.Timestamp)
		}
		return matched[i].seq > matched[j].seq
	})

	out := make([]Checkpoint, len(matched))
	for i, e := range matched {
		out[i] = e.cp.Clone()
	}
	return out
}

// Load pulls a block's persisted checkpoints into memory and returns how
// many were added. Checkpoints already known are skipped.
func (m *Manager) Load(ctx context.Context, blockID string) (int, error) {
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store == nil {
		return 0, nil
	}

	cps, err := store.ListCheckpoints(ctx, blockID)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// oldest first so insertion order matches creation order
	sort.SliceStable(cps, func(i, j int) bool {
		return cps[i].Timestamp.Before(cps[j].Timestamp)
	})
	added := 0
	for _, cp := range cps {
		if _, ok := m.entries[cp.ID]; ok {
			continue
		}
		m.add(cp.Clone())
		added++
	}
	m.logger.Debug("checkpoints loaded",
		zap.String("block", blockID),
		zap.Int("added", added))
	return added, nil
}

func (m *Manager) add(cp Checkpoint) {
	m.entries[cp.ID] = entry{cp: cp, seq: m.nextSeq}
	m.nextSeq++
}
