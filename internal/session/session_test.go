package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/scar"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

func newSession(t *testing.T, raw string, features ...feature.Feature) *Session {
	t.Helper()
	buf, err := sequence.New("b1", raw, sequence.DNA, sequence.Linear)
	require.NoError(t, err)

	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(buf, features, Options{
		MaxHistory: 50,
		Clock: func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		},
	})
	s.SetLogger(zaptest.NewLogger(t))
	return s
}

func gene(start, end int) feature.Feature {
	return feature.Feature{ID: "g1", Name: "gene", Type: feature.TypeGene, Start: start, End: end, Strand: feature.Forward}
}

func TestKey_RequiresEditing(t *testing.T) {
	s := newSession(t, "ACGT")
	v := s.Key("G")
	assert.False(t, v.Applied)
	assert.ErrorIs(t, v.Rejection, ErrInactive)
	assert.Equal(t, Idle, v.State)

	v = s.Click(1)
	assert.Equal(t, Editing, v.State)
	v = s.Blur()
	assert.Equal(t, Idle, v.State)
}

func TestClick_Clamps(t *testing.T) {
	s := newSession(t, "ACGT")
	assert.Equal(t, 0, s.Click(-5).Cursor)
	assert.Equal(t, 4, s.Click(99).Cursor)
	assert.Equal(t, 2, s.Click(2).Cursor)
}

func TestKey_Substitute(t *testing.T) {
	s := newSession(t, "ACGT")
	s.Click(1)

	v := s.Key("t")
	require.True(t, v.Applied)
	assert.Equal(t, "ATGT", v.Raw)
	assert.Equal(t, 2, v.Cursor)
	require.Len(t, v.Scars, 1)
	assert.Equal(t, scar.Substitution, v.Scars[0].Kind)
	assert.Equal(t, 1, v.Scars[0].Position)
	assert.Equal(t, "C", v.Scars[0].Original)
	assert.Equal(t, "T", v.Scars[0].Inserted)
	assert.True(t, v.CanUndo)
	assert.False(t, v.CanRedo)
}

func TestKey_SubstituteAtEndAppends(t *testing.T) {
	s := newSession(t, "AC")
	s.Click(2)

	v := s.Key("G")
	require.True(t, v.Applied)
	assert.Equal(t, "ACG", v.Raw)
	assert.Equal(t, 3, v.Cursor)
	require.Len(t, v.Scars, 1)
	assert.Equal(t, scar.Insertion, v.Scars[0].Kind)
}

func TestKey_InvalidResidue(t *testing.T) {
	s := newSession(t, "ACGT")
	s.Click(0)

	v := s.Key("X")
	assert.False(t, v.Applied)
	assert.ErrorIs(t, v.Rejection, ErrInvalidResidue)
	assert.True(t, errors.Is(v.Rejection, sequence.ErrInvalidResidue))
	assert.Equal(t, "ACGT", v.Raw)
	assert.Empty(t, v.Scars)
	assert.False(t, v.CanUndo)
	assert.Equal(t, 0, v.Cursor)

	for _, key := range []string{"é", "Ω", "1", " "} {
		v = s.Key(key)
		assert.False(t, v.Applied, key)
		assert.ErrorIs(t, v.Rejection, ErrInvalidResidue, key)
	}
	var re *sequence.ResidueError
	require.ErrorAs(t, s.Key("é").Rejection, &re)
	assert.Equal(t, 'é', re.Residue)
	assert.Equal(t, "ACGT", s.View().Raw)

	v = s.Key("Shift")
	assert.False(t, v.Applied)
	assert.NoError(t, v.Rejection)
}

func TestKey_InsertShiftsFeatures(t *testing.T) {
	s := newSession(t, "AAAACCCC", gene(4, 8))
	s.Click(2)
	s.ToggleInsertMode()

	v := s.Key("G")
	require.True(t, v.Applied)
	assert.Equal(t, "AAGAACCCC", v.Raw)
	assert.Equal(t, 3, v.Cursor)
	require.Len(t, v.Scars, 1)
	assert.Equal(t, scar.Insertion, v.Scars[0].Kind)
	assert.Equal(t, 2, v.Scars[0].Position)
	assert.Equal(t, "G", v.Scars[0].Inserted)
	require.Len(t, v.Features, 1)
	assert.Equal(t, 5, v.Features[0].Start)
	assert.Equal(t, 9, v.Features[0].End)
}

func TestInsertThenUndoRestoresExactly(t *testing.T) {
	s := newSession(t, "AAAACCCC", gene(4, 8))
	before := s.View()

	s.Click(4)
	s.ToggleInsertMode()
	s.Key("T")

	v := s.Undo()
	require.True(t, v.Applied)
	assert.Equal(t, before.Raw, v.Raw)
	assert.Equal(t, before.Features, v.Features)
	assert.Equal(t, before.Scars, v.Scars)
	assert.True(t, v.CanRedo)
}

func TestBackspace(t *testing.T) {
	s := newSession(t, "AAAACCCC", gene(2, 6))
	s.Click(4)

	v := s.Key(KeyBackspace)
	require.True(t, v.Applied)
	assert.Equal(t, "AAACCCC", v.Raw)
	assert.Equal(t, 3, v.Cursor)
	require.Len(t, v.Scars, 1)
	assert.Equal(t, scar.Deletion, v.Scars[0].Kind)
	assert.Equal(t, 3, v.Scars[0].Position)
	assert.Equal(t, "A", v.Scars[0].Original)
	require.Len(t, v.Features, 1)
	assert.Equal(t, 2, v.Features[0].Start)
	assert.Equal(t, 5, v.Features[0].End)
}

func TestBackspace_AtStartIsNoop(t *testing.T) {
	s := newSession(t, "ACGT")
	s.Click(0)
	v := s.Key(KeyBackspace)
	assert.False(t, v.Applied)
	assert.ErrorIs(t, v.Rejection, ErrNotFound)
	assert.Equal(t, "ACGT", v.Raw)
}

func TestForwardDelete(t *testing.T) {
	s := newSession(t, "ACGT")
	s.Click(1)
	v := s.Key(KeyDelete)
	require.True(t, v.Applied)
	assert.Equal(t, "AGT", v.Raw)
	assert.Equal(t, 1, v.Cursor)

	s.Click(3)
	v = s.Key(KeyDelete)
	assert.False(t, v.Applied)
	assert.ErrorIs(t, v.Rejection, ErrNotFound)
}

func TestDeleteDropsCollapsedFeature(t *testing.T) {
	s := newSession(t, "ACGT", feature.Feature{ID: "one", Type: feature.TypeRBS, Start: 2, End: 3, Strand: feature.Forward})
	s.Click(3)
	v := s.Key(KeyBackspace)
	require.True(t, v.Applied)
	assert.Empty(t, v.Features)
}

func TestNavigationKeys(t *testing.T) {
	s := newSession(t, "ACGT")
	s.Click(2)
	assert.Equal(t, 1, s.Key(KeyArrowLeft).Cursor)
	assert.Equal(t, 2, s.Key(KeyArrowRight).Cursor)
	assert.Equal(t, 4, s.Key(KeyEnd).Cursor)
	assert.Equal(t, 4, s.Key(KeyArrowRight).Cursor)
	assert.Equal(t, 0, s.Key(KeyHome).Cursor)
	assert.Equal(t, 0, s.Key(KeyArrowLeft).Cursor)

	v := s.Key(KeyInsert)
	assert.True(t, v.InsertMode)
	assert.False(t, v.CanUndo)

	v = s.Key("Shift")
	assert.False(t, v.Applied)
	assert.NoError(t, v.Rejection)
}

func TestSubstitutionsFullyUndone(t *testing.T) {
	s := newSession(t, "ACGTACGTAC")
	original := s.View().Raw

	edits := []struct {
		pos int
		key string
	}{
		{0, "T"}, {3, "G"}, {3, "C"}, {9, "A"}, {5, "N"}, {1, "G"},
	}
	for _, e := range edits {
		s.Click(e.pos)
		require.True(t, s.Key(e.key).Applied)
	}

	v := s.View()
	assert.Len(t, v.Scars, len(edits))
	assert.NotEqual(t, original, v.Raw)

	for range edits {
		require.True(t, s.Undo().Applied)
	}
	v = s.View()
	assert.Equal(t, original, v.Raw)
	assert.Empty(t, v.Scars)
	assert.False(t, v.CanUndo)

	v = s.Undo()
	assert.False(t, v.Applied)
	assert.ErrorIs(t, v.Rejection, ErrNotFound)
}

func TestRedo(t *testing.T) {
	s := newSession(t, "ACGT")
	s.Click(0)
	s.Key("T")
	s.Key("T")
	edited := s.View()

	s.Undo()
	s.Undo()
	assert.Equal(t, 2, s.RedoDepth())

	s.Redo()
	v := s.Redo()
	require.True(t, v.Applied)
	assert.Equal(t, edited.Raw, v.Raw)
	assert.Equal(t, edited.Scars, v.Scars)
	assert.False(t, v.CanRedo)

	v = s.Redo()
	assert.ErrorIs(t, v.Rejection, ErrNotFound)
}

func TestNewEditClearsRedo(t *testing.T) {
	s := newSession(t, "ACGT")
	s.Click(0)
	s.Key("T")
	s.Undo()
	require.True(t, s.View().CanRedo)

	s.Click(1)
	v := s.Key("A")
	require.True(t, v.Applied)
	assert.False(t, v.CanRedo)
	assert.Equal(t, 0, s.RedoDepth())
}

func TestHistoryBounded(t *testing.T) {
	buf, err := sequence.New("b", "AAAA", sequence.DNA, sequence.Linear)
	require.NoError(t, err)
	s := New(buf, nil, Options{MaxHistory: 3})
	s.Click(0)
	for i := 0; i < 4; i++ {
		s.Click(i)
		s.Key("C")
	}
	assert.Equal(t, 3, s.UndoDepth())
	s.Undo()
	s.Undo()
	s.Undo()
	// the first edit fell off the stack
	assert.Equal(t, "CAAA", s.View().Raw)
}

func TestLocked(t *testing.T) {
	s := newSession(t, "ACGT", gene(0, 2))
	s.Click(1)
	s.Key("T")
	s.SetLocked(true)

	for name, v := range map[string]View{
		"key":            s.Key("G"),
		"backspace":      s.Key(KeyBackspace),
		"delete":         s.Key(KeyDelete),
		"paste":          s.Paste("AC"),
		"delete range":   s.DeleteRange(0, 2),
		"undo":           s.Undo(),
		"redo":           s.Redo(),
		"add feature":    s.AddFeature(gene(1, 3)),
		"remove feature": s.RemoveFeature("g1"),
		"replace":        s.Replace(Snapshot{Buffer: sequence.Buffer{Raw: "A"}}),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, v.Applied)
			assert.ErrorIs(t, v.Rejection, ErrLockedBuffer)
			assert.Equal(t, "ATGT", v.Raw)
		})
	}

	// navigation still works
	v := s.Click(3)
	assert.True(t, v.Applied)
	assert.Equal(t, 3, v.Cursor)
	assert.True(t, s.Key(KeyHome).Applied)

	s.SetLocked(false)
	assert.True(t, s.Key("G").Applied)
}

func TestToggleInsertModeAffectsOnlyNextKey(t *testing.T) {
	s := newSession(t, "ACGT")
	s.Click(0)
	s.Key("T")
	before := s.View().Scars

	v := s.ToggleInsertMode()
	assert.True(t, v.InsertMode)
	assert.Equal(t, before, v.Scars)
	assert.Equal(t, 1, s.UndoDepth())

	v = s.Key("G")
	require.Len(t, v.Scars, 2)
	assert.Equal(t, scar.Substitution, v.Scars[0].Kind)
	assert.Equal(t, scar.Insertion, v.Scars[1].Kind)
	assert.Equal(t, "TGCGT", v.Raw)
}

func TestPaste(t *testing.T) {
	t.Run("insert mode", func(t *testing.T) {
		s := newSession(t, "AAAA", gene(2, 4))
		s.Click(1)
		s.ToggleInsertMode()
		v := s.Paste("gg c")
		require.True(t, v.Applied)
		assert.Equal(t, "AGGCAAA", v.Raw)
		assert.Equal(t, 4, v.Cursor)
		require.Len(t, v.Scars, 1)
		assert.Equal(t, "GGC", v.Scars[0].Inserted)
		assert.Equal(t, 5, v.Features[0].Start)
		assert.Equal(t, 1, s.UndoDepth())
	})

	t.Run("substitute mode overflows", func(t *testing.T) {
		s := newSession(t, "AAAA")
		s.Click(2)
		v := s.Paste("CCCC")
		require.True(t, v.Applied)
		assert.Equal(t, "AACCCC", v.Raw)
		require.Len(t, v.Scars, 2)
		assert.Equal(t, scar.Substitution, v.Scars[0].Kind)
		assert.Equal(t, "AA", v.Scars[0].Original)
		assert.Equal(t, "CC", v.Scars[0].Inserted)
		assert.Equal(t, scar.Insertion, v.Scars[1].Kind)
		assert.Equal(t, 4, v.Scars[1].Position)
		assert.Equal(t, 1, s.UndoDepth())

		assert.Equal(t, "AAAA", s.Undo().Raw)
	})

	t.Run("invalid", func(t *testing.T) {
		s := newSession(t, "AAAA")
		s.Click(0)
		v := s.Paste("ACQ")
		assert.ErrorIs(t, v.Rejection, ErrInvalidResidue)
		assert.Equal(t, "AAAA", v.Raw)
	})
}

func TestDeleteRange(t *testing.T) {
	s := newSession(t, "AAAACCCCGGGG", feature.Feature{ID: "c", Type: feature.TypeCDS, Start: 4, End: 8, Strand: feature.Forward})
	v := s.DeleteRange(10, 2)
	require.True(t, v.Applied)
	assert.Equal(t, "AAGG", v.Raw)
	assert.Equal(t, 2, v.Cursor)
	assert.Empty(t, v.Features)
	require.Len(t, v.Scars, 1)
	assert.Equal(t, "AACCCCGG", v.Scars[0].Original)

	v = s.DeleteRange(1, 1)
	assert.ErrorIs(t, v.Rejection, ErrNotFound)
}

func TestFeatureEdits(t *testing.T) {
	s := newSession(t, "ACGTACGT")

	v := s.AddFeature(feature.Feature{Name: "p", Type: feature.TypePromoter, Start: 0, End: 4})
	require.True(t, v.Applied)
	require.Len(t, v.Features, 1)
	f := v.Features[0]
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, feature.Forward, f.Strand)
	assert.Equal(t, feature.DefaultColor(feature.TypePromoter), f.Color)

	v = s.AddFeature(feature.Feature{Name: "bad", Start: 5, End: 9})
	assert.ErrorIs(t, v.Rejection, ErrInvalidFeatureRange)

	f.Name = "renamed"
	f.Type = feature.TypeTerminator
	v = s.UpdateFeature(f)
	require.True(t, v.Applied)
	assert.Equal(t, "renamed", v.Features[0].Name)
	assert.Equal(t, feature.TypeTerminator, v.Features[0].Type)

	v = s.UpdateFeature(feature.Feature{ID: "missing", Start: 0, End: 1})
	assert.ErrorIs(t, v.Rejection, ErrNotFound)

	v = s.RemoveFeature(f.ID)
	require.True(t, v.Applied)
	assert.Empty(t, v.Features)

	v = s.Undo()
	require.Len(t, v.Features, 1)
	assert.Equal(t, "renamed", v.Features[0].Name)
}

func TestFeatureEdits_RejectsBadStrandAndType(t *testing.T) {
	s := newSession(t, "ACGTACGT")
	s.Click(0)

	tests := []struct {
		name string
		f    feature.Feature
		want error
	}{
		{"strand", feature.Feature{Name: "bad", Type: feature.TypeGene, Start: 1, End: 3, Strand: 7}, feature.ErrInvalidStrand},
		{"type", feature.Feature{Name: "bad", Type: "bogus", Start: 1, End: 3, Strand: feature.Forward}, feature.ErrUnknownType},
		{"both", feature.Feature{Name: "bad", Type: "bogus", Start: 1, End: 3, Strand: 7}, ErrInvalidFeature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := s.AddFeature(tt.f)
			assert.False(t, v.Applied)
			assert.ErrorIs(t, v.Rejection, ErrInvalidFeature)
			assert.ErrorIs(t, v.Rejection, tt.want)
			assert.Empty(t, v.Features)
			assert.False(t, v.CanUndo)
		})
	}

	v := s.AddFeature(feature.Feature{Name: "ok", Start: 1, End: 3})
	require.True(t, v.Applied)
	f := v.Features[0]
	assert.Equal(t, feature.TypeMiscFeature, f.Type)
	assert.Equal(t, feature.Forward, f.Strand)

	bad := f
	bad.Strand = -2
	v = s.UpdateFeature(bad)
	assert.ErrorIs(t, v.Rejection, feature.ErrInvalidStrand)
	bad = f
	bad.Type = "enhancer"
	v = s.UpdateFeature(bad)
	assert.ErrorIs(t, v.Rejection, feature.ErrUnknownType)
	assert.Equal(t, []feature.Feature{f}, s.View().Features)

	v = s.Replace(Snapshot{
		Buffer:   sequence.Buffer{Raw: "ACGT"},
		Features: []feature.Feature{{ID: "x", Name: "x", Type: "bogus", Start: 0, End: 2, Strand: feature.Forward}},
	})
	assert.ErrorIs(t, v.Rejection, ErrInvalidFeature)
	assert.Equal(t, "ACGTACGT", v.Raw)
}

func TestReplaceLeavesHistory(t *testing.T) {
	s := newSession(t, "ACGT")
	s.Click(0)
	s.Key("T")
	s.Key("T")
	s.Undo()
	undo, redo := s.UndoDepth(), s.RedoDepth()

	v := s.Replace(Snapshot{
		Buffer:   sequence.Buffer{Raw: "ggg"},
		Features: []feature.Feature{gene(0, 2), gene(1, 9)},
	})
	require.True(t, v.Applied)
	assert.Equal(t, "GGG", v.Raw)
	assert.Equal(t, "b1", v.BlockID)
	assert.Equal(t, sequence.DNA, v.SequenceType)
	assert.Len(t, v.Features, 1)
	assert.Empty(t, v.Scars)
	assert.Equal(t, 2, v.Cursor)
	assert.Equal(t, undo, s.UndoDepth())
	assert.Equal(t, redo, s.RedoDepth())

	v = s.Replace(Snapshot{Buffer: sequence.Buffer{Raw: "GXG"}})
	assert.ErrorIs(t, v.Rejection, ErrInvalidResidue)
	assert.Equal(t, "GGG", v.Raw)
}

func TestApplyIsUndoable(t *testing.T) {
	s := newSession(t, "ACGT")
	v := s.Apply(Snapshot{Buffer: sequence.Buffer{Raw: "TTTT"}})
	require.True(t, v.Applied)
	assert.True(t, v.CanUndo)
	assert.Equal(t, "ACGT", s.Undo().Raw)
}

func TestTransform(t *testing.T) {
	s := newSession(t, "ACGT")

	v := s.Transform("double", func(cur Snapshot) (Snapshot, error) {
		cur.Buffer.Raw += cur.Buffer.Raw
		return cur, nil
	})
	require.True(t, v.Applied)
	assert.Equal(t, "ACGTACGT", v.Raw)
	assert.Equal(t, "ACGT", s.Undo().Raw)

	errBoom := errors.New("boom")
	v = s.Transform("fail", func(Snapshot) (Snapshot, error) { return Snapshot{}, errBoom })
	assert.False(t, v.Applied)
	assert.ErrorIs(t, v.Rejection, errBoom)
	assert.Equal(t, "ACGT", v.Raw)

	s.SetLocked(true)
	v = s.Transform("locked", func(cur Snapshot) (Snapshot, error) { return cur, nil })
	assert.ErrorIs(t, v.Rejection, ErrLockedBuffer)
}

func TestScarsMonotonicAcrossUndo(t *testing.T) {
	s := newSession(t, "ACGT")
	s.Click(0)
	s.Key("T")
	s.Key("T")
	last := s.View().Scars[1].CreatedAt
	s.Undo()
	v := s.Key("G")
	require.Len(t, v.Scars, 2)
	assert.True(t, v.Scars[1].CreatedAt.After(last))
}

func TestViewIsACopy(t *testing.T) {
	s := newSession(t, "ACGT", gene(0, 2))
	v := s.View()
	v.Features[0].Name = "mutated"
	assert.Equal(t, "gene", s.View().Features[0].Name)
}
