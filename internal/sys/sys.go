// Package sys provides anonymous memory mappings from the operating
// system. It is the only layer that talks to the kernel about memory;
// everything above it works on the []byte regions returned here.
package sys

import "errors"

// Option selects the commitment state of a mapping.
type Option int

const (
	// Reserve claims address space without backing memory; the region
	// is inaccessible until committed.
	Reserve Option = iota

	// Commit makes the region readable and writable.
	Commit

	// Reclaim tells the kernel the region's contents are no longer
	// needed and its pages may be discarded. Valid for Modify only.
	Reclaim
)

var (
	// ErrUnsupported reports that this platform has no anonymous
	// mapping facility.
	ErrUnsupported = errors.New("sys: unsupported platform")

	// ErrBadSize reports a mapping size that is not a positive
	// multiple of the page size.
	ErrBadSize = errors.New("sys: size not page-aligned")

	// ErrBadOption reports an option that is not valid for the
	// requested operation.
	ErrBadOption = errors.New("sys: invalid option")
)
