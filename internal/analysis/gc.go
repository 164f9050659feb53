package analysis

import "github.com/inodb/vibe-seqedit/internal/sequence"

// MaxGCPoints bounds the number of windows AdaptiveWindow produces.
const MaxGCPoints = 1000

// GCPoint is the GC fraction of the window starting at Position.
type GCPoint struct {
	Position int
	GC       float64
}

// AdaptiveWindow picks a window and step for a sequence of length n: small
// windows for short sequences, larger ones for long sequences, with the step
// chosen so the profile has at most about MaxGCPoints points.
func AdaptiveWindow(n int) (window, step int) {
	if n < 10 {
		return max(n, 1), 1
	}
	window = min(max(n/100, 10), 5000)
	step = max(1, window/5, (n+MaxGCPoints-1)/MaxGCPoints)
	return window, step
}

// GCWindow slides a window of windowSize residues across seq, advancing by
// step, and reports the fraction of G, C and S residues in each window.
// A non-positive window or step selects AdaptiveWindow. A sequence shorter
// than the window yields a single point covering the whole sequence.
func GCWindow(seq string, windowSize, step int) []GCPoint {
	n := len(seq)
	if n == 0 {
		return nil
	}
	if windowSize <= 0 || step <= 0 {
		windowSize, step = AdaptiveWindow(n)
	}

	prefix := make([]int, n+1)
	for i := 0; i < n; i++ {
		prefix[i+1] = prefix[i]
		if isGC(seq[i]) {
			prefix[i+1]++
		}
	}

	if windowSize > n {
		return []GCPoint{{Position: 0, GC: float64(prefix[n]) / float64(n)}}
	}

	points := make([]GCPoint, 0, (n-windowSize)/step+1)
	for pos := 0; pos+windowSize <= n; pos += step {
		gc := prefix[pos+windowSize] - prefix[pos]
		points = append(points, GCPoint{Position: pos, GC: float64(gc) / float64(windowSize)})
	}
	return points
}

// GCProfile is GCWindow for a typed sequence. Protein sequences have no GC
// content and return nil.
func GCProfile(seq string, t sequence.Type, windowSize, step int) []GCPoint {
	if !t.IsNucleotide() {
		return nil
	}
	return GCWindow(seq, windowSize, step)
}

// GCContent returns the GC fraction of the whole sequence.
func GCContent(seq string) float64 {
	if len(seq) == 0 {
		return 0
	}
	gc := 0
	for i := 0; i < len(seq); i++ {
		if isGC(seq[i]) {
			gc++
		}
	}
	return float64(gc) / float64(len(seq))
}

func isGC(c byte) bool {
	switch c {
	case 'G', 'C', 'S', 'g', 'c', 's':
		return true
	}
	return false
}
