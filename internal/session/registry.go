package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

// Registry owns the sessions of an application, one per block id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
	logger   *zap.Logger
}

// NewRegistry creates an empty registry whose sessions use opts.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger handed to sessions opened afterwards.
func (r *Registry) SetLogger(l *zap.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// Open creates the session for buf.ID.
func (r *Registry) Open(buf sequence.Buffer, features []feature.Feature) (*Session, error) {
	if buf.ID == "" {
		return nil, errors.New("open session: empty block id")
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("open session %s: %w", buf.ID, err)
	}
	if err := checkFeatures(features, buf.Len()); err != nil {
		return nil, fmt.Errorf("open session %s: %w", buf.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[buf.ID]; ok {
		return nil, fmt.Errorf("open session %s: %w", buf.ID, ErrSessionExists)
	}

	s := New(buf, features, r.opts)
	s.SetLogger(r.logger)
	r.sessions[buf.ID] = s
	r.logger.Debug("session opened",
		zap.String("block", buf.ID),
		zap.Int("length", buf.Len()),
		zap.String("type", string(buf.Type)))
	return s, nil
}

// Get returns the session for a block id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close drops the session for a block id. Returns false if none was open.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// IDs returns the open block ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
