package power

import (
	"fmt"
	"sort"
)

// MergedLabel is the label of the bucket that collects every entity below pct percent.
func MergedLabel(pct int) string {
	return fmt.Sprintf("< %d%%", pct)
}

// Merge folds every entity whose power at the last found sample is below pct percent of
// the total at that sample into a single bucket and returns all series sorted ascending
// by their last value. Series in powers are truncated to foundCount in place.
//
// baseline, when non-nil, contributes baseline[foundCount-1] to the total without being
// part of the output.
func Merge(pct, foundCount, datapoints int, powers *PowerMap, baseline []int64) []LabeledSeries {
	if foundCount <= 0 {
		return []LabeledSeries{}
	}
	if foundCount > datapoints {
		foundCount = datapoints
	}

	for _, id := range powers.order {
		powers.series[id] = powers.series[id][:foundCount]
	}

	last := foundCount - 1

	var totalAtLast int64
	if len(baseline) > last {
		totalAtLast = baseline[last]
	}
	for _, id := range powers.order {
		totalAtLast += powers.series[id][last]
	}

	mergeFloor := int64(pct) * totalAtLast / 100

	merged := make([]int64, foundCount)
	kept := powers.order[:0]
	out := make([]LabeledSeries, 0, powers.Len()+1)
	for _, id := range powers.order {
		s := powers.series[id]
		if s[last] < mergeFloor {
			for i := range merged {
				merged[i] += s[i]
			}
			delete(powers.series, id)
			continue
		}
		kept = append(kept, id)
		out = append(out, LabeledSeries{Label: id, Series: s})
	}
	powers.order = kept
	out = append(out, LabeledSeries{Label: MergedLabel(pct), Series: merged})

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Series[last] < out[j].Series[last]
	})

	return out
}
