package basealloc

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/oda/basealloc/align"
	"github.com/oda/basealloc/internal/extent"
	"github.com/oda/basealloc/internal/sys"
	"github.com/oda/basealloc/pagesize"
)

// DefaultChunkPages is how many pages back one arena chunk unless the
// caller asks for a different chunk size.
const DefaultChunkPages = 16

// Arena is a chunked bump allocator. Regions are carved from the
// current chunk by advancing an offset; when a chunk is exhausted a new
// page-aligned chunk is mapped. Individual regions are never freed;
// Reset drops everything at once.
type Arena struct {
	mu        sync.Mutex
	chunkSize int
	chunks    []*extent.Extent
	off       int // offset into the last chunk

	allocs atomic.Int64
	used   atomic.Int64
}

// NewArena returns an arena with the given chunk size, rounded up to
// the page size. A chunkSize of 0 selects DefaultChunkPages pages.
// Construction fails if the page size cannot be established; the arena
// never guesses a granularity.
func NewArena(chunkSize int) (*Arena, error) {
	ps, err := pagesize.Get()
	if err != nil {
		return nil, err
	}
	if chunkSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, chunkSize)
	}
	if chunkSize == 0 {
		chunkSize = DefaultChunkPages * ps
	}
	chunkSize, err = pagesize.Align(chunkSize)
	if err != nil {
		return nil, err
	}
	return &Arena{chunkSize: chunkSize}, nil
}

// Alloc returns a zeroed region of size bytes aligned to alignment.
// Alignment must be a power of two no larger than the page size; chunk
// bases are page-aligned, so aligning the bump offset is sufficient.
func (a *Arena) Alloc(size, alignment int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	ps, err := pagesize.Get()
	if err != nil {
		return nil, err
	}
	if alignment <= 0 || alignment > ps || !align.PowerOfTwo(uintptr(alignment)) {
		return nil, fmt.Errorf("%w: %d", ErrBadAlign, alignment)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Requests bigger than a chunk get a dedicated extent, inserted
	// behind the current chunk so bump allocation continues from it.
	if size > a.chunkSize {
		e, err := extent.New(size, sys.Commit)
		if err != nil {
			return nil, err
		}
		if n := len(a.chunks); n == 0 {
			a.chunks = append(a.chunks, e)
			a.off = e.Committed()
		} else {
			a.chunks = append(a.chunks, a.chunks[n-1])
			a.chunks[n-1] = e
		}
		a.account(size)
		return e.Bytes()[:size], nil
	}

	if b := a.bump(size, alignment); b != nil {
		a.account(size)
		return b, nil
	}

	e, err := extent.New(a.chunkSize, sys.Commit)
	if err != nil {
		return nil, err
	}
	a.chunks = append(a.chunks, e)
	a.off = 0

	b := a.bump(size, alignment)
	if b == nil {
		return nil, fmt.Errorf("%w: %d does not fit a fresh chunk", ErrBadSize, size)
	}
	a.account(size)
	return b, nil
}

// AllocBytes returns a zeroed region of size bytes at MinAlign.
func (a *Arena) AllocBytes(size int) ([]byte, error) {
	return a.Alloc(size, MinAlign)
}

// bump carves size bytes from the current chunk, or returns nil if it
// does not fit. Caller holds a.mu.
func (a *Arena) bump(size, alignment int) []byte {
	if len(a.chunks) == 0 {
		return nil
	}
	cur := a.chunks[len(a.chunks)-1]
	off, ok := align.Up(uintptr(a.off), uintptr(alignment))
	if !ok || int(off)+size > cur.Committed() {
		return nil
	}
	b, err := cur.Slice(int(off), size)
	if err != nil {
		return nil
	}
	a.off = int(off) + size
	return b
}

func (a *Arena) account(size int) {
	a.allocs.Inc()
	a.used.Add(int64(size))
}

// Allocs returns how many regions the arena has handed out since the
// last Reset.
func (a *Arena) Allocs() int64 {
	return a.allocs.Load()
}

// Used returns how many bytes the arena has handed out since the last
// Reset, excluding alignment padding.
func (a *Arena) Used() int64 {
	return a.used.Load()
}

// Reset invalidates every region handed out so far. The first chunk is
// kept mapped with its contents reclaimed; the rest are unmapped.
func (a *Arena) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.chunks) > 0 {
		for _, e := range a.chunks[1:] {
			if err := e.Release(); err != nil {
				return err
			}
		}
		a.chunks = a.chunks[:1]
		if err := a.chunks[0].Reclaim(); err != nil {
			return err
		}
	}
	a.off = 0
	a.allocs.Store(0)
	a.used.Store(0)
	return nil
}

// Release unmaps every chunk. Regions handed out so far become
// invalid; the arena itself may be reused and will map fresh chunks on
// demand.
func (a *Arena) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, e := range a.chunks {
		if err := e.Release(); err != nil {
			return err
		}
	}
	a.chunks = nil
	a.off = 0
	a.allocs.Store(0)
	a.used.Store(0)
	return nil
}
