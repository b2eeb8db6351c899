// Package extent manages contiguous regions of anonymous memory. An
// extent owns exactly one mapping: address space is reserved up front
// and committed page by page as the owner needs it, so large arenas can
// be cheap until touched.
package extent

import (
	"errors"
	"fmt"

	"github.com/oda/basealloc/internal/sys"
	"github.com/oda/basealloc/pagesize"
)

var (
	// ErrBounds reports a slice request outside the committed prefix.
	ErrBounds = errors.New("extent: out of bounds")

	// ErrReleased reports use of an extent after Release.
	ErrReleased = errors.New("extent: released")
)

// Extent is one anonymous mapping. The committed prefix is usable
// memory; the rest is reserved address space.
type Extent struct {
	buf       []byte
	committed int
}

// New maps an extent of at least size bytes, rounded up to the page
// size. With sys.Commit the whole extent is immediately usable; with
// sys.Reserve it holds address space only until Commit is called.
func New(size int, opt sys.Option) (*Extent, error) {
	aligned, err := pagesize.Align(size)
	if err != nil {
		return nil, err
	}

	buf, err := sys.Alloc(aligned, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to map extent: %w", err)
	}

	e := &Extent{buf: buf}
	if opt == sys.Commit {
		e.committed = len(buf)
	}
	return e, nil
}

// Len returns the mapped size in bytes.
func (e *Extent) Len() int {
	return len(e.buf)
}

// Committed returns the size of the usable prefix in bytes.
func (e *Extent) Committed() int {
	return e.committed
}

// Bytes returns the committed prefix. The slice is only valid until
// Release is called.
func (e *Extent) Bytes() []byte {
	return e.buf[:e.committed]
}

// Slice returns a sub-slice of the committed prefix, or ErrBounds if
// the range falls outside it.
func (e *Extent) Slice(off, n int) ([]byte, error) {
	if e.buf == nil {
		return nil, ErrReleased
	}
	if off < 0 || n < 0 || off+n > e.committed {
		return nil, fmt.Errorf("%w: [%d, %d) of %d committed", ErrBounds, off, off+n, e.committed)
	}
	return e.buf[off : off+n], nil
}

// Commit grows the usable prefix to cover at least n bytes, rounded up
// to the page size. Shrinking is not supported; a smaller n is a no-op.
func (e *Extent) Commit(n int) error {
	if e.buf == nil {
		return ErrReleased
	}
	aligned, err := pagesize.Align(n)
	if err != nil {
		return err
	}
	if aligned > len(e.buf) {
		return fmt.Errorf("%w: commit %d of %d mapped", ErrBounds, aligned, len(e.buf))
	}
	if aligned <= e.committed {
		return nil
	}

	if err := sys.Modify(e.buf[e.committed:aligned], sys.Commit); err != nil {
		return fmt.Errorf("failed to commit extent: %w", err)
	}
	e.committed = aligned
	return nil
}

// Reclaim tells the kernel the committed contents are disposable. The
// extent stays mapped and committed; its contents are undefined after
// this call.
func (e *Extent) Reclaim() error {
	if e.buf == nil {
		return ErrReleased
	}
	if e.committed == 0 {
		return nil
	}
	if err := sys.Modify(e.buf[:e.committed], sys.Reclaim); err != nil {
		return fmt.Errorf("failed to reclaim extent: %w", err)
	}
	return nil
}

// Release unmaps the extent. Slices previously returned become invalid.
func (e *Extent) Release() error {
	if e.buf == nil {
		return nil
	}
	buf := e.buf
	e.buf = nil
	e.committed = 0
	if err := sys.Free(buf); err != nil {
		return fmt.Errorf("failed to release extent: %w", err)
	}
	return nil
}
