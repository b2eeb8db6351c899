// Package align provides power-of-two alignment arithmetic for sizes
// and offsets, used by the allocator to place regions on page and slot
// boundaries.
package align

// Is reports whether v is a multiple of alignment. The second result is
// false if alignment is not a power of two.
func Is(v, alignment uintptr) (bool, bool) {
	if !PowerOfTwo(alignment) {
		return false, false
	}
	return v&(alignment-1) == 0, true
}

// Up rounds v up to the next multiple of alignment. The second result
// is false if alignment is not a power of two or the rounded value
// would overflow.
func Up(v, alignment uintptr) (uintptr, bool) {
	if !PowerOfTwo(alignment) {
		return 0, false
	}
	mask := alignment - 1
	sum := v + mask
	if sum < v {
		return 0, false
	}
	return sum &^ mask, true
}

// Down rounds v down to the previous multiple of alignment. The second
// result is false if alignment is not a power of two.
func Down(v, alignment uintptr) (uintptr, bool) {
	if !PowerOfTwo(alignment) {
		return 0, false
	}
	return v &^ (alignment - 1), true
}

// Offset returns how many bytes must be added to addr to reach the next
// multiple of alignment. The second result is false if alignment is not
// a power of two or rounding would overflow.
func Offset(addr, alignment uintptr) (uintptr, bool) {
	aligned, ok := Up(addr, alignment)
	if !ok {
		return 0, false
	}
	return aligned - addr, true
}

// PowerOfTwo reports whether v is a power of two. Zero is not.
func PowerOfTwo(v uintptr) bool {
	return v != 0 && v&(v-1) == 0
}
