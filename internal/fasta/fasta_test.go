package fasta

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `>pUC19 cloning vector
TCGCGCGTTT CGGTGATGAC
GGTGAAAACC
; comment
>empty

>lacZ_alpha
atgaccatgattacg
`

func TestRead(t *testing.T) {
	records, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "pUC19", records[0].ID)
	assert.Equal(t, "cloning vector", records[0].Description)
	assert.Equal(t, "TCGCGCGTTTCGGTGATGACGGTGAAAACC", records[0].Seq)

	assert.Equal(t, "empty", records[1].ID)
	assert.Equal(t, "", records[1].Seq)

	assert.Equal(t, "lacZ_alpha", records[2].ID)
	assert.Equal(t, "ATGACCATGATTACG", records[2].Seq)
}

func TestRead_BareSequence(t *testing.T) {
	records, err := Read(strings.NewReader("acgt\n1 acgt\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].ID)
	assert.Equal(t, "ACGTACGT", records[0].Seq)
}

func TestRead_Empty(t *testing.T) {
	records, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		header string
		id     string
		desc   string
	}{
		{">seq1", "seq1", ""},
		{">seq1 some description", "seq1", "some description"},
		{">seq1\tTAB", "seq1", "TAB"},
		{"> spaced ", "spaced", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			id, desc := parseHeader(tt.header)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.desc, desc)
		})
	}
}

func TestLoadAndFirst(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "seqs.fa")
	require.NoError(t, os.WriteFile(plain, []byte(sample), 0644))

	rec, err := First(plain)
	require.NoError(t, err)
	assert.Equal(t, "pUC19", rec.ID)

	gzPath := filepath.Join(dir, "seqs.fa.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	records, err := Load(gzPath)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	emptyPath := filepath.Join(dir, "empty.fa")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0644))
	_, err = First(emptyPath)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Load(filepath.Join(dir, "missing.fa"))
	assert.Error(t, err)
}
