package basealloc

import (
	"fmt"
	"unsafe"

	"github.com/oda/basealloc/internal/bitmap"
	"github.com/oda/basealloc/internal/extent"
	"github.com/oda/basealloc/internal/sys"
	"github.com/oda/basealloc/pagesize"
)

// Slab hands out fixed-size regions from a single committed extent.
// Slot occupancy lives in a concurrent bitmap, so Get and Put need no
// lock of their own.
type Slab struct {
	class Class
	ext   *extent.Extent
	base  uintptr
	slots int
	bits  *bitmap.Bitmap
}

// NewSlab maps a slab serving regions of the given class. Class pages
// are whole pages, so the slab size is already page-aligned.
func NewSlab(class Class) (*Slab, error) {
	if class.Size <= 0 || class.Pages <= 0 {
		return nil, fmt.Errorf("%w: class %+v", ErrBadSize, class)
	}
	ps, err := pagesize.Get()
	if err != nil {
		return nil, err
	}

	ext, err := extent.New(class.SlabSize(ps), sys.Commit)
	if err != nil {
		return nil, err
	}

	buf := ext.Bytes()
	return &Slab{
		class: class,
		ext:   ext,
		base:  uintptr(unsafe.Pointer(&buf[0])),
		slots: class.Slots(ps),
		bits:  bitmap.New(class.Slots(ps)),
	}, nil
}

// Class returns the size class this slab serves.
func (s *Slab) Class() Class {
	return s.class
}

// Slots returns the slab's capacity in regions.
func (s *Slab) Slots() int {
	return s.slots
}

// Used returns how many regions are currently handed out.
func (s *Slab) Used() int {
	return s.bits.Used()
}

// Full reports whether every slot is handed out.
func (s *Slab) Full() bool {
	return s.bits.Used() == s.slots
}

// Get returns a zeroed region of the class size, or bitmap.ErrFull
// when every slot is taken. Slots are zeroed on acquisition, never on
// free; a double free cannot touch a slot that already has a new owner.
func (s *Slab) Get() ([]byte, error) {
	i, err := s.bits.Acquire()
	if err != nil {
		return nil, err
	}
	b, err := s.ext.Slice(i*s.class.Size, s.class.Size)
	if err != nil {
		// The bitmap is sized from the extent; a miss here means the
		// slab was released while regions were outstanding.
		s.bits.Release(i)
		return nil, err
	}
	for j := range b {
		b[j] = 0
	}
	return b, nil
}

// Put returns a region obtained from Get. The region must belong to
// this slab and start on a slot boundary. Double frees surface as
// bitmap.ErrNotSet.
func (s *Slab) Put(b []byte) error {
	i, err := s.index(b)
	if err != nil {
		return err
	}
	return s.bits.Release(i)
}

// Contains reports whether b was carved from this slab.
func (s *Slab) Contains(b []byte) bool {
	_, err := s.index(b)
	return err == nil
}

func (s *Slab) index(b []byte) (int, error) {
	if len(b) != s.class.Size {
		return 0, fmt.Errorf("%w: length %d, class size %d", ErrForeign, len(b), s.class.Size)
	}
	addr := uintptr(unsafe.Pointer(&b[0]))
	if addr < s.base {
		return 0, ErrForeign
	}
	off := int(addr - s.base)
	if off >= s.slots*s.class.Size || off%s.class.Size != 0 {
		return 0, ErrForeign
	}
	return off / s.class.Size, nil
}

// Release unmaps the slab. Outstanding regions become invalid.
func (s *Slab) Release() error {
	return s.ext.Release()
}
