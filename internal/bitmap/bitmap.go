// Package bitmap provides a fixed-capacity concurrent bitmap used to
// track slot occupancy in slabs. Bits are acquired and released with
// compare-and-swap; no locks are held.
package bitmap

import (
	"errors"
	"fmt"
	"math/bits"
	"sync/atomic"
)

const wordBits = 64

var (
	// ErrFull reports that every bit is already set.
	ErrFull = errors.New("bitmap: full")

	// ErrRange reports an index outside the bitmap.
	ErrRange = errors.New("bitmap: index out of range")

	// ErrNotSet reports a release of a bit that was not set.
	ErrNotSet = errors.New("bitmap: bit not set")
)

// Bitmap tracks n bits, all initially clear.
type Bitmap struct {
	words []atomic.Uint64
	bits  int
	used  atomic.Int64
}

// Words returns how many 64-bit words back a bitmap of n bits.
func Words(n int) int {
	return (n + wordBits - 1) / wordBits
}

// New returns a bitmap of n bits.
func New(n int) *Bitmap {
	return &Bitmap{
		words: make([]atomic.Uint64, Words(n)),
		bits:  n,
	}
}

// Bits returns the capacity of the bitmap.
func (b *Bitmap) Bits() int {
	return b.bits
}

// Used returns how many bits are currently set.
func (b *Bitmap) Used() int {
	return int(b.used.Load())
}

// Acquire finds a clear bit, sets it, and returns its index. Returns
// ErrFull when no bit is available.
func (b *Bitmap) Acquire() (int, error) {
	for w := range b.words {
		for {
			old := b.words[w].Load()
			free := ^old
			if free == 0 {
				break
			}
			bit := bits.TrailingZeros64(free)
			idx := w*wordBits + bit
			if idx >= b.bits {
				break
			}
			if b.words[w].CompareAndSwap(old, old|(1<<bit)) {
				b.used.Add(1)
				return idx, nil
			}
			// Lost the race for this word; rescan it.
		}
	}
	return 0, ErrFull
}

// Release clears bit i. Releasing a clear bit is an error, since it
// means a slot was freed twice.
func (b *Bitmap) Release(i int) error {
	if i < 0 || i >= b.bits {
		return fmt.Errorf("%w: %d of %d", ErrRange, i, b.bits)
	}
	w, mask := i/wordBits, uint64(1)<<(i%wordBits)
	for {
		old := b.words[w].Load()
		if old&mask == 0 {
			return fmt.Errorf("%w: %d", ErrNotSet, i)
		}
		if b.words[w].CompareAndSwap(old, old&^mask) {
			b.used.Add(-1)
			return nil
		}
	}
}

// Test reports whether bit i is set.
func (b *Bitmap) Test(i int) (bool, error) {
	if i < 0 || i >= b.bits {
		return false, fmt.Errorf("%w: %d of %d", ErrRange, i, b.bits)
	}
	w, mask := i/wordBits, uint64(1)<<(i%wordBits)
	return b.words[w].Load()&mask != 0, nil
}
