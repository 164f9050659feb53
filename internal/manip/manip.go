// Package manip derives whole new sequence states from an existing one.
// Results are applied to a session as a single undoable edit.
package manip

import (
	"errors"
	"strings"

	"github.com/bebop/poly/transform"

	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

var (
	ErrProtein     = errors.New("manip: protein sequences have no complement")
	ErrNotCircular = errors.New("manip: rotation requires a circular sequence")
)

// ReverseComplement returns the reverse complement of buf with every
// feature remapped onto the new coordinates and its strand flipped.
// RNA stays RNA.
func ReverseComplement(buf sequence.Buffer, features []feature.Feature) (sequence.Buffer, []feature.Feature, error) {
	if !buf.Type.IsNucleotide() {
		return sequence.Buffer{}, nil, ErrProtein
	}

	raw := strings.ToUpper(buf.Raw)
	if buf.Type == sequence.RNA {
		raw = strings.ReplaceAll(raw, "U", "T")
	}
	rc := transform.ReverseComplement(raw)
	if buf.Type == sequence.RNA {
		rc = strings.ReplaceAll(rc, "T", "U")
	}

	n := buf.Len()
	out := make([]feature.Feature, 0, len(features))
	for _, f := range features {
		f = f.Clone()
		f.Start, f.End = n-f.End, n-f.Start
		f.Strand = -f.Strand
		out = append(out, f)
	}

	buf.Raw = rc
	return buf, out, nil
}

// Rotate moves the origin of a circular sequence to origin (taken modulo
// the length). Features are shifted with it; a feature spanning the new
// origin cannot be expressed as a half-open range and is dropped.
func Rotate(buf sequence.Buffer, features []feature.Feature, origin int) (sequence.Buffer, []feature.Feature, error) {
	if !buf.IsCircular() {
		return sequence.Buffer{}, nil, ErrNotCircular
	}

	n := buf.Len()
	if n == 0 {
		return buf, feature.CloneAll(features), nil
	}
	origin %= n
	if origin < 0 {
		origin += n
	}

	out := make([]feature.Feature, 0, len(features))
	for _, f := range features {
		if f.Start < origin && origin < f.End {
			continue
		}
		f = f.Clone()
		if f.Start >= origin {
			f.Start -= origin
			f.End -= origin
		} else {
			f.Start += n - origin
			f.End += n - origin
		}
		out = append(out, f)
	}

	buf.Raw = buf.Raw[origin:] + buf.Raw[:origin]
	return buf, out, nil
}
