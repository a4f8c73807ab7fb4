// Package chunk splits slices into fixed-size groups.
package chunk

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrInvalidArgument is returned for a non-positive chunk size.
var ErrInvalidArgument = errors.New("invalid argument")

// Split returns a sequence over consecutive sub-slices of items, each of
// length k except possibly the last. The sequence is lazy and can be ranged
// over more than once. Sub-slices alias items.
func Split[T any](items []T, k int) (iter.Seq[[]T], error) {
	if k <= 0 {
		return nil, fmt.Errorf("chunk size %d: %w", k, ErrInvalidArgument)
	}
	return slices.Chunk(items, k), nil
}

// Count returns the number of chunks Split yields for n items, ceil(n/k).
func Count(n, k int) int {
	if n <= 0 || k <= 0 {
		return 0
	}
	return (n + k - 1) / k
}
