package analysis

import (
	"runtime"
	"sync"
)

// SearchMotifs runs FindMotifIn for every pattern on a pool of workers and
// returns one MotifHits per pattern, in pattern order. Workers fill only the
// slots of the patterns they take, so results need no reordering.
func (r *Runner) SearchMotifs(in Input, patterns []string) []MotifHits {
	hits := make([]MotifHits, len(patterns))
	if len(patterns) == 0 {
		return hits
	}

	workers := min(r.poolSize(), len(patterns))
	next := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range next {
				hits[i] = MotifHits{
					Pattern: patterns[i],
					Matches: FindMotifIn(in.Raw, patterns[i], in.Type),
				}
			}
		}()
	}

	for i := range patterns {
		next <- i
	}
	close(next)
	wg.Wait()
	return hits
}

// poolSize is the configured worker count, or one per CPU.
func (r *Runner) poolSize() int {
	if r.workers > 0 {
		return r.workers
	}
	return runtime.NumCPU()
}
