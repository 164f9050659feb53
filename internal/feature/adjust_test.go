package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(name string, start, end int) Feature {
	return Feature{ID: name, Name: name, Type: TypeGene, Start: start, End: end, Strand: Forward}
}

func TestAdjust_Insertion(t *testing.T) {
	tests := []struct {
		name       string
		f          Feature
		pos, delta int
		wantStart  int
		wantEnd    int
	}{
		{"before feature", span("a", 5, 10), 2, 1, 6, 11},
		{"at start shifts whole feature", span("a", 5, 10), 5, 1, 6, 11},
		{"inside grows", span("a", 5, 10), 7, 2, 5, 12},
		{"at end boundary extends", span("a", 5, 10), 10, 1, 5, 11},
		{"after feature", span("a", 5, 10), 11, 3, 5, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Adjust([]Feature{tt.f}, tt.pos, tt.delta)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantStart, got[0].Start)
			assert.Equal(t, tt.wantEnd, got[0].End)
		})
	}
}

func TestAdjust_Deletion(t *testing.T) {
	tests := []struct {
		name       string
		f          Feature
		pos, delta int
		wantStart  int
		wantEnd    int
	}{
		{"before feature", span("a", 5, 10), 1, -1, 4, 9},
		{"strictly inside shrinks end", span("a", 5, 10), 7, -1, 5, 9},
		{"first residue", span("a", 5, 10), 5, -1, 5, 9},
		{"last residue", span("a", 5, 10), 9, -1, 5, 9},
		{"after feature", span("a", 5, 10), 10, -2, 5, 10},
		{"span covering start", span("a", 5, 10), 3, -4, 3, 6},
		{"span covering end", span("a", 5, 10), 8, -4, 5, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Adjust([]Feature{tt.f}, tt.pos, tt.delta)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantStart, got[0].Start)
			assert.Equal(t, tt.wantEnd, got[0].End)
		})
	}
}

func TestAdjust_DropsCollapsed(t *testing.T) {
	features := []Feature{span("gone", 5, 7), span("kept", 0, 20)}
	got := Adjust(features, 4, -4)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].ID)
	assert.Equal(t, 16, got[0].End)

	single := Adjust([]Feature{span("one", 3, 4)}, 3, -1)
	assert.Empty(t, single)
}

func TestAdjust_Pure(t *testing.T) {
	in := []Feature{span("a", 5, 10)}
	in[0].Metadata = map[string]string{"note": "x"}

	out := Adjust(in, 0, 1)
	out[0].Metadata["note"] = "changed"

	assert.Equal(t, 5, in[0].Start)
	assert.Equal(t, "x", in[0].Metadata["note"])
}

func TestAdjust_ZeroDelta(t *testing.T) {
	in := []Feature{span("a", 5, 10)}
	out := Adjust(in, 3, 0)
	assert.Equal(t, in, out)
}
