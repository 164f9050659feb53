// Package output writes analysis results and edit history as
// tab-delimited text.
package output

import (
	"bufio"
	"io"
	"strings"
)

// TabWriter writes rows of tab-separated values under a fixed header.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer with the given columns.
func NewTabWriter(w io.Writer, columns ...string) *TabWriter {
	return &TabWriter{
		w:       bufio.NewWriter(w),
		columns: columns,
	}
}

// WriteHeader writes the header line, prefixed with '#'.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString("#" + strings.Join(tw.columns, "\t") + "\n")
	return err
}

// WriteRow writes one row. Empty values are written as "-".
func (tw *TabWriter) WriteRow(values ...string) error {
	row := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			v = "-"
		}
		row[i] = v
	}
	_, err := tw.w.WriteString(strings.Join(row, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
