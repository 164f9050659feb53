package script

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-seqedit/internal/editor"
	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/session"
)

// StepResult records the outcome of one step. Rejected steps do not stop
// the replay.
type StepResult struct {
	Index     int
	Op        string
	Applied   bool
	Rejection error
}

// Result is the outcome of a replay.
type Result struct {
	Block string
	View  session.View
	Steps []StepResult
}

// Rejected returns the steps that were not applied.
func (r Result) Rejected() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if !s.Applied {
			out = append(out, s)
		}
	}
	return out
}

// Player replays scripts against an editor.
type Player struct {
	ed     *editor.Editor
	logger *zap.Logger
}

// NewPlayer creates a player driving ed.
func NewPlayer(ed *editor.Editor) *Player {
	return &Player{ed: ed, logger: zap.NewNop()}
}

// SetLogger sets the logger for step outcomes.
func (p *Player) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Run opens the script's block, loads its persisted checkpoints and
// replays every step. The block stays open afterwards.
func (p *Player) Run(ctx context.Context, s *Script) (Result, error) {
	buf, err := s.Buffer()
	if err != nil {
		return Result{}, err
	}
	lib, err := s.Library()
	if err != nil {
		return Result{}, err
	}

	features := make([]feature.Feature, 0, len(s.Features))
	for i, fs := range s.Features {
		f, err := fs.Feature(lib)
		if err != nil {
			return Result{}, fmt.Errorf("feature %d: %w", i+1, err)
		}
		features = append(features, f)
	}

	if v := p.ed.Open(buf, features); v.Rejection != nil {
		return Result{}, fmt.Errorf("open block %s: %w", s.Block, v.Rejection)
	}
	n, err := p.ed.LoadCheckpoints(ctx, s.Block)
	if err != nil {
		return Result{}, fmt.Errorf("load checkpoints: %w", err)
	}
	if n > 0 {
		p.logger.Info("loaded checkpoints", zap.String("block", s.Block), zap.Int("count", n))
	}

	res := Result{Block: s.Block, Steps: make([]StepResult, 0, len(s.Steps))}
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		op, _ := st.Op()
		sr, err := p.step(s.Block, st, lib)
		if err != nil {
			return res, fmt.Errorf("step %d (%s): %w", i+1, op, err)
		}
		sr.Index, sr.Op = i+1, op
		if !sr.Applied {
			p.logger.Debug("step not applied",
				zap.Int("step", sr.Index),
				zap.String("op", op),
				zap.Error(sr.Rejection))
		}
		res.Steps = append(res.Steps, sr)
	}

	res.View = p.ed.View(s.Block)
	return res, nil
}

func (p *Player) step(block string, st Step, lib feature.Library) (StepResult, error) {
	ed := p.ed
	switch {
	case st.Click != nil:
		return fromView(ed.ApplyClick(block, *st.Click)), nil
	case st.Key != "":
		return fromView(ed.ApplyKey(block, st.Key)), nil
	case len(st.Keys) > 0:
		return repeat(len(st.Keys), func(i int) session.View { return ed.ApplyKey(block, st.Keys[i]) }), nil
	case st.Paste != "":
		return fromView(ed.Paste(block, st.Paste)), nil
	case st.Delete != nil:
		return fromView(ed.DeleteRange(block, st.Delete.Start, st.Delete.End)), nil
	case st.Undo > 0:
		return repeat(st.Undo, func(int) session.View { return ed.Undo(block) }), nil
	case st.Redo > 0:
		return repeat(st.Redo, func(int) session.View { return ed.Redo(block) }), nil
	case st.ToggleInsert:
		return fromView(ed.ToggleInsertMode(block)), nil
	case st.Lock != nil:
		return fromView(ed.SetLocked(block, *st.Lock)), nil
	case st.Blur:
		return fromView(ed.Blur(block)), nil
	case st.Checkpoint != nil:
		id := ed.CreateCheckpoint(block, *st.Checkpoint)
		if id == "" {
			return StepResult{Rejection: session.ErrNotFound}, nil
		}
		return StepResult{Applied: true}, nil
	case st.Restore != "":
		cp, ok := ed.FindCheckpoint(block, st.Restore)
		if !ok {
			return StepResult{Rejection: fmt.Errorf("checkpoint %q: %w", st.Restore, session.ErrNotFound)}, nil
		}
		v, _ := ed.RestoreCheckpoint(cp.ID)
		return fromView(v), nil
	case st.DeleteCheckpoint != "":
		cp, ok := ed.FindCheckpoint(block, st.DeleteCheckpoint)
		if !ok {
			return StepResult{Rejection: fmt.Errorf("checkpoint %q: %w", st.DeleteCheckpoint, session.ErrNotFound)}, nil
		}
		return StepResult{Applied: ed.DeleteCheckpoint(cp.ID)}, nil
	case st.ReverseComplement:
		return fromView(ed.ReverseComplement(block)), nil
	case st.Rotate != nil:
		return fromView(ed.Rotate(block, *st.Rotate)), nil
	case st.AddFeature != nil:
		f, err := st.AddFeature.Feature(lib)
		if err != nil {
			return StepResult{}, err
		}
		return fromView(ed.AddFeature(block, f)), nil
	case st.UpdateFeature != nil:
		return p.updateFeature(block, *st.UpdateFeature), nil
	case st.RemoveFeature != "":
		id, ok := p.featureID(block, st.RemoveFeature)
		if !ok {
			return StepResult{Rejection: fmt.Errorf("feature %q: %w", st.RemoveFeature, session.ErrNotFound)}, nil
		}
		return fromView(ed.RemoveFeature(block, id)), nil
	}
	return StepResult{}, fmt.Errorf("%w: step has no action", ErrInvalidScript)
}

// updateFeature changes the first feature carrying fs.Name. Zero
// fields keep the current value.
func (p *Player) updateFeature(block string, fs FeatureSpec) StepResult {
	var cur feature.Feature
	found := false
	for _, f := range p.ed.View(block).Features {
		if f.Name == fs.Name {
			cur, found = f, true
			break
		}
	}
	if !found {
		return StepResult{Rejection: fmt.Errorf("feature %q: %w", fs.Name, session.ErrNotFound)}
	}

	if fs.Type != "" {
		typ, err := feature.ParseType(fs.Type)
		if err != nil {
			return StepResult{Rejection: err}
		}
		cur.Type = typ
	}
	if fs.End > 0 {
		cur.Start, cur.End = fs.Start, fs.End
	}
	if fs.Strand != 0 {
		cur.Strand = feature.Strand(fs.Strand)
	}
	if fs.Color != "" {
		cur.Color = fs.Color
	}
	for k, v := range fs.Metadata {
		if cur.Metadata == nil {
			cur.Metadata = make(map[string]string)
		}
		cur.Metadata[k] = v
	}
	return fromView(p.ed.UpdateFeature(block, cur))
}

func (p *Player) featureID(block, name string) (string, bool) {
	for _, f := range p.ed.View(block).Features {
		if f.Name == name {
			return f.ID, true
		}
	}
	return "", false
}

func fromView(v session.View) StepResult {
	return StepResult{Applied: v.Applied, Rejection: v.Rejection}
}

// repeat runs fn n times. The step counts as applied if every call was;
// the first rejection is kept.
func repeat(n int, fn func(int) session.View) StepResult {
	res := StepResult{Applied: true}
	for i := range n {
		v := fn(i)
		if !v.Applied {
			res.Applied = false
			if res.Rejection == nil {
				res.Rejection = v.Rejection
			}
		}
	}
	return res
}
