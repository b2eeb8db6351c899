//go:build unix

package extent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oda/basealloc/internal/sys"
	"github.com/oda/basealloc/pagesize"
)

func TestNewCommitted(t *testing.T) {
	ps, err := pagesize.Get()
	require.NoError(t, err)

	// Size rounds up to a whole page.
	e, err := New(1, sys.Commit)
	require.NoError(t, err)
	defer e.Release()

	assert.Equal(t, ps, e.Len())
	assert.Equal(t, ps, e.Committed())

	b := e.Bytes()
	require.Len(t, b, ps)
	b[0] = 0xAB
	assert.Equal(t, byte(0xAB), b[0])
}

func TestReserveAndCommit(t *testing.T) {
	ps, err := pagesize.Get()
	require.NoError(t, err)

	e, err := New(4*ps, sys.Reserve)
	require.NoError(t, err)
	defer e.Release()

	assert.Equal(t, 4*ps, e.Len())
	assert.Equal(t, 0, e.Committed())
	assert.Empty(t, e.Bytes())

	// Commit one page, then grow to two.
	require.NoError(t, e.Commit(1))
	assert.Equal(t, ps, e.Committed())
	e.Bytes()[ps-1] = 7

	require.NoError(t, e.Commit(ps+1))
	assert.Equal(t, 2*ps, e.Committed())
	e.Bytes()[2*ps-1] = 9

	// A smaller commit is a no-op, not a shrink.
	require.NoError(t, e.Commit(ps))
	assert.Equal(t, 2*ps, e.Committed())

	// Committing past the mapping is an error.
	assert.ErrorIs(t, e.Commit(5*ps), ErrBounds)
}

func TestSliceBounds(t *testing.T) {
	ps, err := pagesize.Get()
	require.NoError(t, err)

	e, err := New(2*ps, sys.Commit)
	require.NoError(t, err)
	defer e.Release()

	b, err := e.Slice(ps, ps)
	require.NoError(t, err)
	assert.Len(t, b, ps)

	_, err = e.Slice(ps, ps+1)
	assert.ErrorIs(t, err, ErrBounds)
	_, err = e.Slice(-1, 1)
	assert.ErrorIs(t, err, ErrBounds)
}

func TestReclaim(t *testing.T) {
	e, err := New(1, sys.Commit)
	require.NoError(t, err)
	defer e.Release()

	e.Bytes()[0] = 0xFF
	require.NoError(t, e.Reclaim())

	// Still mapped and writable after reclaim.
	e.Bytes()[0] = 1
	assert.Equal(t, byte(1), e.Bytes()[0])
}

func TestRelease(t *testing.T) {
	e, err := New(1, sys.Commit)
	require.NoError(t, err)

	require.NoError(t, e.Release())
	// Idempotent.
	require.NoError(t, e.Release())

	_, err = e.Slice(0, 1)
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, e.Commit(1), ErrReleased)
	assert.ErrorIs(t, e.Reclaim(), ErrReleased)
}
