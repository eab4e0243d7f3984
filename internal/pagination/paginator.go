package pagination

import (
	"errors"
	"fmt"
)

// Pagination defaults and limits.
const (
	DefaultPageSize     = 10
	DefaultMaxPageLinks = 5
	MinPage             = 1
)

// ErrInvalidPageSize is returned for a page size below 1.
var ErrInvalidPageSize = errors.New("page size must be >= 1")

// Paginator slices lists into fixed-size pages.
type Paginator struct {
	size int
}

// New returns a Paginator for the given page size.
func New(size int) (Paginator, error) {
	if size < 1 {
		return Paginator{}, fmt.Errorf("%w: got %d", ErrInvalidPageSize, size)
	}
	return Paginator{size: size}, nil
}

// MustNew is New for sizes known to be valid.
func MustNew(size int) Paginator {
	p, err := New(size)
	if err != nil {
		panic(err)
	}
	return p
}

// Size returns the page size.
func (p Paginator) Size() int {
	return p.size
}

// TotalPages returns ceil(count/size), with a minimum of 1.
func (p Paginator) TotalPages(count int) int {
	if count <= 0 || p.size <= 0 {
		return 1
	}
	pages := count / p.size
	if count%p.size > 0 {
		pages++
	}
	return pages
}

// Bounds returns the half-open index range [start, end) of page n, clipped
// to count. Out-of-range pages yield an empty range.
//
//nolint:nonamedreturns // Named returns document the pair.
func (p Paginator) Bounds(n, count int) (start, end int) {
	if n < MinPage || count <= 0 || p.size <= 0 {
		return 0, 0
	}
	start = (n - 1) * p.size
	if start >= count {
		return 0, 0
	}
	end = min(start+p.size, count)
	return start, end
}

// Clamp moves n into [1, total].
func Clamp(n, total int) int {
	if total < MinPage {
		total = MinPage
	}
	return max(MinPage, min(n, total))
}

// Page returns the items of page n. The result shares storage with items.
func Page[T any](p Paginator, items []T, n int) []T {
	start, end := p.Bounds(n, len(items))
	return items[start:end]
}
