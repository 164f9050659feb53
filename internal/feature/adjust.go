package feature

// Adjust remaps feature coordinates after an edit at pos that changed the
// sequence length by delta. The input is left untouched.
//
// For insertions every boundary at or after pos moves right by delta. For
// deletions of [pos, pos-delta), boundaries past the span move left, those
// inside it collapse to pos, and features left empty are dropped.
func Adjust(features []Feature, pos, delta int) []Feature {
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		f = f.Clone()
		if delta != 0 {
			f.Start = shift(f.Start, pos, delta)
			f.End = shift(f.End, pos, delta)
		}
		if f.Start >= f.End {
			continue
		}
		out = append(out, f)
	}
	return out
}

func shift(boundary, pos, delta int) int {
	if delta > 0 {
		if boundary >= pos {
			return boundary + delta
		}
		return boundary
	}
	spanEnd := pos - delta
	switch {
	case boundary >= spanEnd:
		return boundary + delta
	case boundary > pos:
		return pos
	default:
		return boundary
	}
}
