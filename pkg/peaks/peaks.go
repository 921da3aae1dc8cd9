// Package peaks implements local maxima picking with a relative height
// threshold and a minimum distance between the picked maxima.
package peaks

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Indexes returns the indexes of the local maxima of y (in ascending
// order) that are strictly higher than
//
//	min(y) + threshold * (max(y) - min(y))
//
// Flat tops are resolved to a single index (the middle one). If minDistance
// is greater than one, then only the highest peak is kept within every
// window of minDistance samples around a kept peak.
func Indexes(y []float64, threshold float64, minDistance int) []int {
	if len(y) < 3 {
		return nil
	}

	lo, hi := floats.Min(y), floats.Max(y)
	absThreshold := threshold*(hi-lo) + lo

	dy := derivative(y)
	if dy == nil {
		return nil
	}

	var result []int
	for idx := range y {
		var prev, next float64
		if idx > 0 {
			prev = dy[idx-1]
		}
		if idx < len(dy) {
			next = dy[idx]
		}
		if prev > 0 && next < 0 && y[idx] > absThreshold {
			result = append(result, idx)
		}
	}

	if len(result) > 1 && minDistance > 1 {
		result = suppressNeighbors(y, result, minDistance)
	}
	return result
}

// derivative returns the first order difference of y with plateaus
// (zero differences) filled from the neighboring non-zero differences.
// Returns nil if the signal is flat.
func derivative(y []float64) []float64 {
	dy := make([]float64, len(y)-1)
	zeros := 0
	for i := range dy {
		dy[i] = y[i+1] - y[i]
		if dy[i] == 0 {
			zeros++
		}
	}
	if zeros == len(dy) {
		return nil
	}
	if zeros == 0 {
		return dy
	}

	type plateau struct{ start, end int } // [start, end)
	var plateaus []plateau
	for i := 0; i < len(dy); {
		if dy[i] != 0 {
			i++
			continue
		}
		start := i
		for i < len(dy) && dy[i] == 0 {
			i++
		}
		plateaus = append(plateaus, plateau{start: start, end: i})
	}

	if p := plateaus[0]; p.start == 0 {
		fill(dy[p.start:p.end], dy[p.end])
		plateaus = plateaus[1:]
	}
	if len(plateaus) > 0 {
		if p := plateaus[len(plateaus)-1]; p.end == len(dy) {
			fill(dy[p.start:p.end], dy[p.start-1])
			plateaus = plateaus[:len(plateaus)-1]
		}
	}

	for _, p := range plateaus {
		left, right := dy[p.start-1], dy[p.end]
		// median of the plateau indexes; indexes below it take the left
		// neighbor, the rest take the right one
		median := float64(p.start+p.end-1) / 2
		for i := p.start; i < p.end; i++ {
			if float64(i) < median {
				dy[i] = left
			} else {
				dy[i] = right
			}
		}
	}
	return dy
}

func fill(s []float64, v float64) {
	for i := range s {
		s[i] = v
	}
}

func suppressNeighbors(y []float64, candidates []int, minDistance int) []int {
	byHeight := make([]int, len(candidates))
	copy(byHeight, candidates)
	sort.SliceStable(byHeight, func(i, j int) bool {
		return y[byHeight[i]] > y[byHeight[j]]
	})

	removed := make([]bool, len(y))
	for i := range removed {
		removed[i] = true
	}
	for _, idx := range candidates {
		removed[idx] = false
	}

	for _, idx := range byHeight {
		if removed[idx] {
			continue
		}
		start := max(0, idx-minDistance)
		end := min(len(y), idx+minDistance+1)
		for i := start; i < end; i++ {
			removed[i] = true
		}
		removed[idx] = false
	}

	result := make([]int, 0, len(candidates))
	for _, idx := range candidates {
		if !removed[idx] {
			result = append(result, idx)
		}
	}
	return result
}
