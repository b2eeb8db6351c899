// Package pagesize reports the virtual-memory page size of the host.
//
// The value seeds every arena-granularity and mapping decision in the
// allocator, so it is queried from the operating system exactly once,
// validated, and cached for the life of the process. A query failure is
// surfaced to the caller; the package never substitutes a default. A
// guessed page size can disagree with the real mapping granularity and
// corrupt arena alignment far from the fault.
package pagesize

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/oda/basealloc/align"
)

var (
	// ErrQueryFailed reports that the operating system call to
	// retrieve the page size did not succeed.
	ErrQueryFailed = errors.New("pagesize: platform query failed")

	// ErrInvalidSize reports that the operating system returned a
	// page size that is not a positive power of two.
	ErrInvalidSize = errors.New("pagesize: invalid page size")
)

// Querier is the platform capability behind the provider: one call that
// reads the page size from the hosting system. Tests substitute
// implementations returning controlled values or simulated failures.
type Querier interface {
	PageSize() (int, error)
}

// Provider caches the validated page size after the first successful
// query. The cached read path is a single atomic load; the populating
// path elects one caller to perform the OS query while others wait.
// A failed query is not cached and a later call retries it.
type Provider struct {
	querier Querier

	mu   sync.Mutex
	size atomic.Int64
}

// NewProvider returns a provider backed by q. Most callers want the
// package-level Get, which is bound to the real platform querier.
func NewProvider(q Querier) *Provider {
	return &Provider{querier: q}
}

// Get returns the page size in bytes. The first successful call
// performs one OS query and one cache write; every later call returns
// the identical cached value without touching the OS.
func (p *Provider) Get() (int, error) {
	if v := p.size.Load(); v != 0 {
		return int(v), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have populated the cache while we waited.
	if v := p.size.Load(); v != 0 {
		return int(v), nil
	}

	n, err := p.querier.PageSize()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrQueryFailed, err)
	}
	if n <= 0 || !align.PowerOfTwo(uintptr(n)) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}

	p.size.Store(int64(n))
	return n, nil
}

// defaultProvider is the process-wide cache bound to the real platform
// querier. Initialized on first use, read-only thereafter; it holds no
// external resources, so there is nothing to tear down at exit.
var defaultProvider = NewProvider(platformQuerier{})

// Get returns the page size of the current process.
func Get() (int, error) {
	return defaultProvider.Get()
}

// Align rounds n up to the next multiple of the page size.
func Align(n int) (int, error) {
	ps, err := Get()
	if err != nil {
		return 0, err
	}
	v, ok := align.Up(uintptr(n), uintptr(ps))
	if !ok {
		return 0, fmt.Errorf("pagesize: cannot page-align %d", n)
	}
	return int(v), nil
}

// Aligned reports whether n is a multiple of the page size.
func Aligned(n int) (bool, error) {
	ps, err := Get()
	if err != nil {
		return false, err
	}
	ok, _ := align.Is(uintptr(n), uintptr(ps))
	return ok, nil
}
