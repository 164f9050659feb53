package feature

import "sort"

// Index answers overlap queries over a fixed set of features using a
// sorted slice with a running max of end coordinates.
type Index struct {
	features []Feature
	maxEnd   []int // maxEnd[i] = max(End) for features[:i+1]
}

// BuildIndex creates an index over clones of the features.
func BuildIndex(features []Feature) *Index {
	if len(features) == 0 {
		return &Index{}
	}

	sorted := CloneAll(features)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	maxEnd := make([]int, len(sorted))
	maxEnd[0] = sorted[0].End
	for i := 1; i < len(sorted); i++ {
		maxEnd[i] = sorted[i].End
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &Index{features: sorted, maxEnd: maxEnd}
}

// At returns the features whose [Start, End) contains pos, ordered by start.
func (x *Index) At(pos int) []Feature {
	if len(x.features) == 0 {
		return nil
	}

	// candidates are [0, hi): every feature starting at or before pos
	hi := sort.Search(len(x.features), func(i int) bool {
		return x.features[i].Start > pos
	})

	var result []Feature
	for i := hi - 1; i >= 0; i-- {
		// nothing at or left of i reaches pos
		if x.maxEnd[i] <= pos {
			break
		}
		if x.features[i].Contains(pos) {
			result = append(result, x.features[i].Clone())
		}
	}

	// scanned right to left
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}
