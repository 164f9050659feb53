package analysis

import (
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-seqedit/internal/sequence"
)

// Default length ceilings and thresholds.
const (
	DefaultMinORFAminoAcids = 30
	DefaultMaxORFLength     = 100000
	DefaultMaxGCLength      = 1000000
)

// Limits bounds the sequence length each analysis accepts. Analyses over
// longer sequences are skipped rather than cancelled midway. Zero disables
// a ceiling.
type Limits struct {
	MaxORFLength int
	MaxGCLength  int
}

// DefaultLimits returns the default length ceilings.
func DefaultLimits() Limits {
	return Limits{MaxORFLength: DefaultMaxORFLength, MaxGCLength: DefaultMaxGCLength}
}

// Input is an immutable sequence handed to the analyses.
type Input struct {
	Raw  string
	Type sequence.Type
}

// Request selects which analyses to run.
type Request struct {
	GC       bool
	Window   int // <= 0 selects AdaptiveWindow
	Step     int
	ORFs     bool
	MinORFAA int // <= 0 selects the runner default
	Motifs   []string
}

// MotifHits are the matches for one pattern.
type MotifHits struct {
	Pattern string
	Matches []Match
}

// Report collects the results of one Analyze call.
type Report struct {
	Length    int
	GCContent float64
	GC        []GCPoint
	ORFs      []ORF
	Motifs    []MotifHits

	// Skipped names analyses not run because the sequence exceeded a limit
	// or the sequence type does not support them.
	Skipped []string
}

// Runner runs analyses concurrently over immutable inputs.
type Runner struct {
	limits   Limits
	minORFAA int
	workers  int
	logger   *zap.Logger
}

// NewRunner creates a Runner with the given limits. workers <= 0 uses
// runtime.NumCPU() for motif batches.
func NewRunner(limits Limits, minORFAA, workers int) *Runner {
	if minORFAA <= 0 {
		minORFAA = DefaultMinORFAminoAcids
	}
	return &Runner{
		limits:   limits,
		minORFAA: minORFAA,
		workers:  workers,
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for the runner.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Limits returns the runner's length ceilings.
func (r *Runner) Limits() Limits {
	return r.limits
}

// Analyze runs the requested analyses concurrently and waits for all of
// them.
func (r *Runner) Analyze(in Input, req Request) Report {
	rep := Report{Length: len(in.Raw)}
	nucleotide := in.Type.IsNucleotide()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		skipped []string
	)
	skip := func(name string) {
		mu.Lock()
		skipped = append(skipped, name)
		mu.Unlock()
		r.logger.Debug("analysis skipped",
			zap.String("analysis", name),
			zap.Int("length", len(in.Raw)),
			zap.String("type", string(in.Type)))
	}

	if req.GC {
		switch {
		case !nucleotide:
			skip("gc")
		case exceeds(len(in.Raw), r.limits.MaxGCLength):
			skip("gc")
		default:
			wg.Add(1)
			go func() {
				defer wg.Done()
				rep.GC = GCWindow(in.Raw, req.Window, req.Step)
				rep.GCContent = GCContent(in.Raw)
			}()
		}
	}

	if req.ORFs {
		switch {
		case !nucleotide:
			skip("orfs")
		case exceeds(len(in.Raw), r.limits.MaxORFLength):
			skip("orfs")
		default:
			minAA := req.MinORFAA
			if minAA <= 0 {
				minAA = r.minORFAA
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				rep.ORFs = FindORFs(in.Raw, minAA)
			}()
		}
	}

	if len(req.Motifs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rep.Motifs = r.SearchMotifs(in, req.Motifs)
		}()
	}

	wg.Wait()
	rep.Skipped = skipped
	return rep
}

func exceeds(n, limit int) bool {
	return limit > 0 && n > limit
}
