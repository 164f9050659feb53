package scar

import "time"

// Ledger is the append-only list of scars for one buffer.
// CreatedAt is strictly increasing across appends even when the clock stalls
// or steps backwards.
type Ledger struct {
	scars []Scar
	last  time.Time
	clock func() time.Time
}

// NewLedger creates an empty ledger that timestamps scars with time.Now.
func NewLedger() *Ledger {
	return &Ledger{clock: time.Now}
}

// SetClock overrides the timestamp source.
func (l *Ledger) SetClock(clock func() time.Time) {
	l.clock = clock
}

// Append records a new scar and returns it.
func (l *Ledger) Append(kind Kind, pos int, original, inserted string) Scar {
	now := l.clock()
	if !now.After(l.last) {
		now = l.last.Add(time.Nanosecond)
	}
	l.last = now

	s := Scar{
		ID:        newID(),
		Position:  pos,
		Kind:      kind,
		Original:  original,
		Inserted:  inserted,
		CreatedAt: now,
	}
	l.scars = append(l.scars, s)
	return s
}

// Scars returns a copy of the scars in creation order.
func (l *Ledger) Scars() []Scar {
	return CloneAll(l.scars)
}

// Recent returns a copy of scars, most recent first. Ledgers keep creation
// order; this is the display order.
func Recent(scars []Scar) []Scar {
	out := make([]Scar, len(scars))
	for i, s := range scars {
		out[len(scars)-1-i] = s
	}
	return out
}

// Replace swaps the whole ledger for a copy of scars.
// The monotonic watermark never moves backwards, so scars appended after
// restoring an older snapshot still sort after everything seen before.
func (l *Ledger) Replace(scars []Scar) {
	l.scars = CloneAll(scars)
	for _, s := range l.scars {
		if s.CreatedAt.After(l.last) {
			l.last = s.CreatedAt
		}
	}
}
