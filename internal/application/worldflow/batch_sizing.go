package worldflow

import (
	"math"
	"sort"
)

// Batch-sizing constants (spec.md §4.7(d)/(g)): the recursive character and
// post batch workflows each slice their remaining count into sub-batches no
// larger than these ceilings, bounded in depth by the matching recursion cap
// as a safety net — the slice size is the primary brake.
const (
	MaxCharactersPerBatch     = 10
	MaxCharacterRecursionDepth = 50
	MaxPostsPerBatch          = 10
	MaxPostRecursionDepth     = 30
)

// MaxAllowedDepth computes min(ceil(totalCount/8)+1, recursionCap), the
// recursion ceiling for a batch tree sized against its invariant total.
func MaxAllowedDepth(totalCount, recursionCap int) int {
	depth := int(math.Ceil(float64(totalCount)/8)) + 1
	if depth > recursionCap {
		return recursionCap
	}
	if depth < 1 {
		return 1
	}
	return depth
}

// CurrentBatchSize is min(remainingCount, maxPerBatch).
func CurrentBatchSize(remainingCount, maxPerBatch int) int {
	if remainingCount < maxPerBatch {
		return remainingCount
	}
	return maxPerBatch
}

// PostsCountForBatch computes the proportional share of the remaining post
// budget this character sub-batch should carry: at least one post per
// character, biased by the batch's share of the overall remaining user
// count (spec.md §4.7(d) step 4).
func PostsCountForBatch(currentBatchSize, remainingPostsCount, usersCount int) int {
	if usersCount <= 0 {
		return currentBatchSize
	}
	proportional := int(math.Round(float64(remainingPostsCount) * float64(currentBatchSize) / float64(usersCount)))
	if currentBatchSize > proportional {
		return currentBatchSize
	}
	return proportional
}

// NormalizeCounts redistributes target across len(desired) buckets so every
// bucket ends up >= 1 and the sum is exactly target, weighted proportionally
// to desired (spec.md §4.7(d) step 8: "adjustment is proportional to
// current weights; a uniform split is used when weights are equal; the
// remainder is distributed to the largest-weight [buckets]"). target must be
// >= len(desired) for every bucket to clear the >=1 floor; callers (the
// batch workflows) guarantee this via PostsCountForBatch.
func NormalizeCounts(desired []int, target int) []int {
	n := len(desired)
	if n == 0 {
		return nil
	}
	if target < n {
		target = n
	}

	sum := 0
	for _, d := range desired {
		sum += d
	}

	out := make([]int, n)
	if sum <= 0 {
		base := target / n
		rem := target % n
		for i := range out {
			out[i] = base
			if out[i] < 1 {
				out[i] = 1
			}
		}
		for i := 0; i < rem; i++ {
			out[i]++
		}
		return out
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	allocated := 0
	for i, d := range desired {
		v := int(math.Floor(float64(d) / float64(sum) * float64(target)))
		if v < 1 {
			v = 1
		}
		out[i] = v
		allocated += v
	}

	remainder := target - allocated
	if remainder == 0 {
		return out
	}

	// Ties broken by original index so equal weights split as uniformly
	// as integer division allows, matching the "uniform when equal" rule.
	sort.SliceStable(order, func(a, b int) bool {
		return desired[order[a]] > desired[order[b]]
	})

	if remainder > 0 {
		for i := 0; remainder > 0; i++ {
			out[order[i%n]]++
			remainder--
		}
		return out
	}

	// Over-allocated purely by the >=1 floor on tiny weights; claw back
	// from the largest buckets first, never dropping below 1.
	for i := 0; remainder < 0; i = (i + 1) % n {
		idx := order[i]
		if out[idx] > 1 {
			out[idx]--
			remainder++
		}
	}
	return out
}

// TruncateItems trims items to at most n entries.
func TruncateItems[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// PadByCyclicDuplication grows items to exactly target entries by cycling
// back through the originals, calling markVariant on each duplicate so
// callers can tag it (e.g. append a variant suffix to topic/content_brief)
// rather than emitting byte-identical duplicates (spec.md §4.7(g)).
func PadByCyclicDuplication[T any](items []T, target int, markVariant func(item T, variant int) T) []T {
	if len(items) == 0 || len(items) >= target {
		return TruncateItems(items, target)
	}

	out := make([]T, 0, target)
	out = append(out, items...)

	variant := 1
	for i := 0; len(out) < target; i++ {
		if i > 0 && i%len(items) == 0 {
			variant++
		}
		out = append(out, markVariant(items[i%len(items)], variant))
	}
	return out
}
