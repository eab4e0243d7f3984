package pagination

// halfWindow is how many links are shown before the current page.
const halfWindow = 2

// Window returns the first and last page numbers of the numbered links shown
// for the current page: [max(1, current-2), min(total, first+maxLinks-1)].
//
//nolint:nonamedreturns // Named returns document the pair.
func Window(current, total, maxLinks int) (first, last int) {
	if maxLinks < 1 {
		maxLinks = DefaultMaxPageLinks
	}
	first = max(MinPage, current-halfWindow)
	last = min(total, first+maxLinks-1)
	return first, last
}

// Pages returns the page numbers in [first, last].
func Pages(first, last int) []int {
	if last < first {
		return nil
	}
	out := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, i)
	}
	return out
}
