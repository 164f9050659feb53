package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-seqedit/internal/analysis"
	"github.com/inodb/vibe-seqedit/internal/checkpoint"
	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/scar"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestTabWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf, "A", "B", "C")

	row := []string{"1", "", "3"}
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRow(row...))
	require.NoError(t, w.Flush())

	assert.Equal(t, "#A\tB\tC\n1\t-\t3\n", buf.String())
	assert.Equal(t, []string{"1", "", "3"}, row, "caller's values untouched")
}

func TestWriteORFs(t *testing.T) {
	var buf bytes.Buffer
	orfs := analysis.FindORFs("ATGAAATAGCCGATGCCC", 1)
	require.NoError(t, WriteORFs(&buf, orfs))

	got := lines(&buf)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "#Start\tEnd\tStrand"))
	assert.Equal(t, "1\t9\t+\t1\t9\t2\tATG\tTAG\tMK", got[1])
	assert.Equal(t, "13\t18\t+\t1\t6\t2\tATG\t-\tMP", got[2])
}

func TestWriteGC(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGC(&buf, analysis.GCWindow("GCAT", 2, 2)))
	assert.Equal(t, []string{"#Position\tGC", "1\t1.0000", "3\t0.0000"}, lines(&buf))
}

func TestWriteMotifs(t *testing.T) {
	var buf bytes.Buffer
	hits := []analysis.MotifHits{
		{Pattern: "GAATTC", Matches: analysis.FindMotif("GAATTCGAATTC", "GAATTC")},
		{Pattern: "CCC"},
	}
	require.NoError(t, WriteMotifs(&buf, hits))
	assert.Equal(t, []string{"#Pattern\tStart\tEnd", "GAATTC\t1\t6", "GAATTC\t7\t12"}, lines(&buf))
}

func TestWriteScars_MostRecentFirst(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	scars := []scar.Scar{
		{Kind: scar.Substitution, Position: 0, Original: "A", Inserted: "G", CreatedAt: ts},
		{Kind: scar.Deletion, Position: 4, Original: "T", CreatedAt: ts.Add(time.Second)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteScars(&buf, scars))

	got := lines(&buf)
	require.Len(t, got, 3)
	assert.Contains(t, got[1], "deletion\t5\tT\t-")
	assert.Contains(t, got[2], "substitution\t1\tA\tG")
	assert.True(t, strings.HasPrefix(got[2], "2026-01-01T00:00:00Z"))
}

func TestWriteFeatures(t *testing.T) {
	f := feature.New("lacZ", feature.TypeGene, 10, 20, feature.Reverse)

	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, []feature.Feature{f}))

	got := lines(&buf)
	require.Len(t, got, 2)
	assert.Equal(t, "lacZ\tgene\t11\t20\t-\t"+f.Color+"\t"+f.ID, got[1])
}

func TestWriteCheckpoints(t *testing.T) {
	cps := []checkpoint.Checkpoint{{
		ID:           "c1",
		BlockID:      "b1",
		Label:        "before digest",
		Timestamp:    time.Date(2026, 5, 4, 3, 2, 1, 0, time.Local),
		Raw:          "ACGT",
		SequenceType: sequence.DNA,
		Topology:     sequence.Circular,
		Scars:        []scar.Scar{{}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCheckpoints(&buf, cps))

	got := lines(&buf)
	require.Len(t, got, 2)
	assert.Equal(t, "c1\tb1\tbefore digest\t2026-05-04 03:02:01\t4\tdna\tcircular\t0\t1", got[1])
}
