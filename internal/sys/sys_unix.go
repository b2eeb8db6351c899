//go:build unix

package sys

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/oda/basealloc/pagesize"
)

func prot(opt Option) (int, error) {
	switch opt {
	case Reserve:
		return unix.PROT_NONE, nil
	case Commit:
		return unix.PROT_READ | unix.PROT_WRITE, nil
	default:
		return 0, ErrBadOption
	}
}

// Alloc maps size bytes of anonymous private memory. size must be a
// positive multiple of the page size.
func Alloc(size int, opt Option) ([]byte, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}
	aligned, err := pagesize.Aligned(size)
	if err != nil {
		return nil, err
	}
	if !aligned {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}

	p, err := prot(opt)
	if err != nil {
		return nil, err
	}

	b, err := unix.Mmap(-1, 0, size, p, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap %d bytes: %w", size, err)
	}
	return b, nil
}

// Modify changes the protection or advisory state of a mapping
// previously returned by Alloc. Reserve and Commit adjust protection;
// Reclaim advises the kernel to drop the region's pages.
func Modify(b []byte, opt Option) error {
	if opt == Reclaim {
		if err := unix.Madvise(b, unix.MADV_DONTNEED); err != nil {
			return fmt.Errorf("failed to madvise: %w", err)
		}
		return nil
	}

	p, err := prot(opt)
	if err != nil {
		return err
	}
	if err := unix.Mprotect(b, p); err != nil {
		return fmt.Errorf("failed to mprotect: %w", err)
	}
	return nil
}

// Free unmaps a region previously returned by Alloc. The slice must
// not be used afterwards.
func Free(b []byte) error {
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("failed to munmap: %w", err)
	}
	return nil
}
