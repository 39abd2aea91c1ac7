package ensemble

import (
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions row indices into train and validation sets,
// preserving the label proportions of each class. The seed makes the split
// reproducible across runs; stratification guarantees the rare positive
// class appears in both splits whenever it has at least two members.
func StratifiedSplit(labels []float64, validationFraction float64, seed int64) (trainIdx, valIdx []int) {
	rng := rand.New(rand.NewSource(seed))

	groups := make(map[float64][]int)
	var keys []float64
	for i, y := range labels {
		if _, ok := groups[y]; !ok {
			keys = append(keys, y)
		}
		groups[y] = append(groups[y], i)
	}
	sort.Float64s(keys)

	for _, key := range keys {
		idx := groups[key]
		rng.Shuffle(len(idx), func(a, b int) {
			idx[a], idx[b] = idx[b], idx[a]
		})
		nVal := int(math.Round(validationFraction * float64(len(idx))))
		if nVal == 0 && len(idx) > 1 {
			nVal = 1
		}
		if nVal >= len(idx) {
			nVal = len(idx) - 1
		}
		valIdx = append(valIdx, idx[:nVal]...)
		trainIdx = append(trainIdx, idx[nVal:]...)
	}
	sort.Ints(trainIdx)
	sort.Ints(valIdx)
	return trainIdx, valIdx
}

// Subset returns the label values at the given indices.
func Subset(labels []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}
