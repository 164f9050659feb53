package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry(Options{})

	buf, err := sequence.New("plasmid", "ATGC", sequence.DNA, sequence.Circular)
	require.NoError(t, err)

	s, err := r.Open(buf, nil)
	require.NoError(t, err)
	assert.Equal(t, "plasmid", s.ID())

	_, err = r.Open(buf, nil)
	assert.ErrorIs(t, err, ErrSessionExists)

	got, ok := r.Get("plasmid")
	require.True(t, ok)
	assert.Same(t, s, got)

	other, err := sequence.New("insert", "GGCC", sequence.DNA, sequence.Linear)
	require.NoError(t, err)
	_, err = r.Open(other, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"insert", "plasmid"}, r.IDs())

	assert.True(t, r.Close("plasmid"))
	assert.False(t, r.Close("plasmid"))
	_, ok = r.Get("plasmid")
	assert.False(t, ok)
}

func TestRegistry_OpenRejectsInvalid(t *testing.T) {
	r := NewRegistry(Options{})

	_, err := r.Open(sequence.Buffer{Raw: "ACGT", Type: sequence.DNA}, nil)
	assert.Error(t, err)

	_, err = r.Open(sequence.Buffer{ID: "x", Raw: "ACXT", Type: sequence.DNA}, nil)
	assert.ErrorIs(t, err, sequence.ErrInvalidResidue)

	buf := sequence.Buffer{ID: "y", Raw: "ACGT", Type: sequence.DNA}
	_, err = r.Open(buf, []feature.Feature{{Name: "f", Type: feature.TypeGene, Start: 0, End: 2, Strand: 7}})
	assert.ErrorIs(t, err, ErrInvalidFeature)
	_, ok := r.Get("y")
	assert.False(t, ok)
}
