//go:build !unix && !windows

package pagesize

import "errors"

// platformQuerier on platforms with no page-size facility reports a
// query failure rather than assuming a common value; an assumed size
// can disagree with the real mapping granularity.
type platformQuerier struct{}

func (platformQuerier) PageSize() (int, error) {
	return 0, errors.New("no page size query on this platform")
}
