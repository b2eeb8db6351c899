// Package basealloc is a page-granular memory allocator built on
// anonymous mappings. Arenas hand out bump-allocated regions from
// page-aligned chunks; slabs hand out fixed-size slots tracked by a
// bitmap. Both size everything from the operating system's page size,
// queried once per process by the pagesize package.
package basealloc

import (
	"errors"

	"github.com/oda/basealloc/pagesize"
)

// MinAlign is the smallest alignment handed out by the allocator.
const MinAlign = 16

var (
	// ErrBadSize reports a non-positive allocation size.
	ErrBadSize = errors.New("basealloc: invalid size")

	// ErrBadAlign reports an alignment that is not a power of two or
	// exceeds the page size.
	ErrBadAlign = errors.New("basealloc: invalid alignment")

	// ErrTooLarge reports a size with no matching size class.
	ErrTooLarge = errors.New("basealloc: size exceeds largest class")

	// ErrForeign reports a free of memory this allocator did not hand out.
	ErrForeign = errors.New("basealloc: foreign region")
)

// PageSize returns the virtual-memory page size of the host. It is the
// value every arena and slab dimension derives from.
func PageSize() (int, error) {
	return pagesize.Get()
}
