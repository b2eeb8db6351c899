//go:build unix

package pagesize

import "golang.org/x/sys/unix"

// platformQuerier reads the page size from the kernel. On unix the
// value comes from the process auxiliary vector and the call itself
// cannot fail; validation happens in the provider.
type platformQuerier struct{}

func (platformQuerier) PageSize() (int, error) {
	return unix.Getpagesize(), nil
}
