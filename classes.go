package basealloc

import "fmt"

const (
	// Quantum is the spacing of the small size classes.
	Quantum = 16

	// quantumMax is the largest quantum-spaced class; above it classes
	// double up to maxClassPages pages.
	quantumMax = 128

	// maxClassPages bounds the largest size class. Bigger requests
	// belong to dedicated extents, not slabs.
	maxClassPages = 4
)

// Class describes one slab size class: the region size served and the
// number of pages backing one slab of this class.
type Class struct {
	Size  int
	Pages int
}

// SlabSize returns the byte size of one slab of this class for the
// given page size.
func (c Class) SlabSize(pageSize int) int {
	return c.Pages * pageSize
}

// Slots returns how many regions fit in one slab of this class for the
// given page size.
func (c Class) Slots(pageSize int) int {
	return c.SlabSize(pageSize) / c.Size
}

// classTable builds the class ladder for a page size: quantum multiples
// up to quantumMax, then powers of two up to maxClassPages pages.
// Classes of at most one page are backed by a single page; larger ones
// by exactly as many pages as they span.
func classTable(pageSize int) []Class {
	var classes []Class
	for size := Quantum; size <= quantumMax; size += Quantum {
		classes = append(classes, Class{Size: size, Pages: 1})
	}
	for size := 2 * quantumMax; size <= maxClassPages*pageSize; size *= 2 {
		pages := 1
		if size > pageSize {
			pages = size / pageSize
		}
		classes = append(classes, Class{Size: size, Pages: pages})
	}
	return classes
}

// ClassFor returns the smallest size class that fits size. Sizes above
// the largest class get ErrTooLarge; such requests should go to a
// dedicated arena chunk instead.
func ClassFor(size int) (Class, error) {
	if size <= 0 {
		return Class{}, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	ps, err := PageSize()
	if err != nil {
		return Class{}, err
	}
	for _, c := range classTable(ps) {
		if size <= c.Size {
			return c, nil
		}
	}
	return Class{}, fmt.Errorf("%w: %d", ErrTooLarge, size)
}
