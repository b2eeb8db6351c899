//go:build !unix

package sys

// The allocator refuses to fabricate memory on platforms without an
// anonymous mapping facility.

func Alloc(size int, opt Option) ([]byte, error) {
	return nil, ErrUnsupported
}

func Modify(b []byte, opt Option) error {
	return ErrUnsupported
}

func Free(b []byte) error {
	return ErrUnsupported
}
