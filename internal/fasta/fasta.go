// Package fasta reads FASTA records for command-line input.
package fasta

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inodb/vibe-seqedit/internal/sequence"
)

// ErrEmpty is returned when a FASTA source holds no records.
var ErrEmpty = errors.New("fasta: no records")

// Record is one FASTA entry. Seq is normalized: uppercase, with whitespace
// and digits removed.
type Record struct {
	ID          string
	Description string
	Seq         string
}

// Load reads every record from a FASTA file, transparently decompressing
// files ending in .gz.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return Read(reader)
}

// Read parses FASTA content. Text before the first header is treated as an
// unnamed record, so a bare sequence is accepted too.
func Read(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	// long single-line sequences
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	var (
		records []Record
		current *Record
		seq     strings.Builder
	)
	flush := func() {
		if current == nil && seq.Len() == 0 {
			return
		}
		if current == nil {
			current = &Record{}
		}
		current.Seq = sequence.Normalize(seq.String())
		records = append(records, *current)
		current = nil
		seq.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "", strings.HasPrefix(line, ";"):
			continue
		case strings.HasPrefix(line, ">"):
			flush()
			id, desc := parseHeader(line)
			current = &Record{ID: id, Description: desc}
		default:
			seq.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	flush()

	return records, nil
}

// First returns the first record of a FASTA file.
func First(path string) (Record, error) {
	records, err := Load(path)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return records[0], nil
}

// parseHeader splits ">id description" into its parts.
func parseHeader(header string) (id, desc string) {
	header = strings.TrimSpace(strings.TrimPrefix(header, ">"))
	if i := strings.IndexAny(header, " \t"); i >= 0 {
		return header[:i], strings.TrimSpace(header[i+1:])
	}
	return header, ""
}
