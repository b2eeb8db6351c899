//go:build unix

package sys

import (
	"errors"
	"testing"

	"github.com/oda/basealloc/pagesize"
)

func TestAllocCommit(t *testing.T) {
	ps, err := pagesize.Get()
	if err != nil {
		t.Fatalf("pagesize.Get failed: %v", err)
	}

	b, err := Alloc(ps, Commit)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer Free(b)

	if len(b) != ps {
		t.Errorf("expected %d bytes, got %d", ps, len(b))
	}

	// Committed memory is readable and writable.
	b[0] = 0xAA
	b[ps-1] = 0x55
	if b[0] != 0xAA || b[ps-1] != 0x55 {
		t.Error("committed memory did not hold written values")
	}
}

func TestAllocRejectsUnalignedSize(t *testing.T) {
	if _, err := Alloc(1, Commit); !errors.Is(err, ErrBadSize) {
		t.Errorf("expected ErrBadSize, got %v", err)
	}
	if _, err := Alloc(0, Commit); !errors.Is(err, ErrBadSize) {
		t.Errorf("expected ErrBadSize, got %v", err)
	}
	if _, err := Alloc(-4096, Commit); !errors.Is(err, ErrBadSize) {
		t.Errorf("expected ErrBadSize, got %v", err)
	}
}

func TestAllocRejectsReclaim(t *testing.T) {
	ps, err := pagesize.Get()
	if err != nil {
		t.Fatalf("pagesize.Get failed: %v", err)
	}
	if _, err := Alloc(ps, Reclaim); !errors.Is(err, ErrBadOption) {
		t.Errorf("expected ErrBadOption, got %v", err)
	}
}

func TestReserveThenCommit(t *testing.T) {
	ps, err := pagesize.Get()
	if err != nil {
		t.Fatalf("pagesize.Get failed: %v", err)
	}

	b, err := Alloc(2*ps, Reserve)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer Free(b)

	// Commit the first page only and write to it.
	if err := Modify(b[:ps], Commit); err != nil {
		t.Fatalf("Modify failed: %v", err)
	}
	b[ps-1] = 1
	if b[ps-1] != 1 {
		t.Error("committed page did not hold written value")
	}
}

func TestReclaim(t *testing.T) {
	ps, err := pagesize.Get()
	if err != nil {
		t.Fatalf("pagesize.Get failed: %v", err)
	}

	b, err := Alloc(ps, Commit)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer Free(b)

	b[0] = 0xFF
	if err := Modify(b, Reclaim); err != nil {
		t.Fatalf("Modify failed: %v", err)
	}
	// The region stays mapped and usable after reclaim.
	b[0] = 1
	if b[0] != 1 {
		t.Error("reclaimed region unusable")
	}
}
