//go:build unix

package basealloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oda/basealloc/internal/bitmap"
)

func newTestSlab(t *testing.T, size int) *Slab {
	t.Helper()
	class, err := ClassFor(size)
	require.NoError(t, err)
	s, err := NewSlab(class)
	require.NoError(t, err)
	t.Cleanup(func() { s.Release() })
	return s
}

func TestSlabGetPut(t *testing.T) {
	s := newTestSlab(t, 64)
	assert.Equal(t, 64, s.Class().Size)
	assert.Zero(t, s.Used())

	b, err := s.Get()
	require.NoError(t, err)
	assert.Len(t, b, 64)
	assert.Equal(t, 1, s.Used())
	assert.True(t, s.Contains(b))

	b[0] = 0xCD
	require.NoError(t, s.Put(b))
	assert.Zero(t, s.Used())

	// A recycled slot comes back zeroed.
	b2, err := s.Get()
	require.NoError(t, err)
	assert.Zero(t, b2[0])
}

func TestSlabExhaustion(t *testing.T) {
	s := newTestSlab(t, 512)

	regions := make([][]byte, 0, s.Slots())
	for i := 0; i < s.Slots(); i++ {
		b, err := s.Get()
		require.NoError(t, err, "slot %d", i)
		regions = append(regions, b)
	}
	assert.True(t, s.Full())

	_, err := s.Get()
	assert.ErrorIs(t, err, bitmap.ErrFull)

	require.NoError(t, s.Put(regions[3]))
	assert.False(t, s.Full())

	b, err := s.Get()
	require.NoError(t, err)
	assert.True(t, s.Contains(b))
}

func TestSlabRegionsAreDistinct(t *testing.T) {
	s := newTestSlab(t, 128)

	b1, err := s.Get()
	require.NoError(t, err)
	b2, err := s.Get()
	require.NoError(t, err)

	for i := range b1 {
		b1[i] = 0xAA
	}
	for i := range b2 {
		assert.Zero(t, b2[i])
	}
}

func TestSlabPutErrors(t *testing.T) {
	s := newTestSlab(t, 64)

	b, err := s.Get()
	require.NoError(t, err)

	// Wrong length.
	assert.ErrorIs(t, s.Put(b[:32]), ErrForeign)

	// Memory the slab never handed out.
	foreign := make([]byte, 64)
	assert.ErrorIs(t, s.Put(foreign), ErrForeign)
	assert.False(t, s.Contains(foreign))

	// Double free.
	require.NoError(t, s.Put(b))
	assert.ErrorIs(t, s.Put(b), bitmap.ErrNotSet)
}

func TestSlabConcurrentGetPut(t *testing.T) {
	s := newTestSlab(t, 256)

	const goroutines = 16
	const rounds = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	errCh := make(chan error, goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				b, err := s.Get()
				if err != nil {
					errCh <- err
					return
				}
				b[0] = 1
				if err := s.Put(b); err != nil {
					errCh <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}
	assert.Zero(t, s.Used())
}
