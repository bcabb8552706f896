package heap

import "github.com/cockroachdb/errors"

//go:generate mockgen -destination mocks/extender.go -package mocks github.com/vkngwrapper/bmalloc/memutils/heap Extender

// ErrExhausted is returned by Extender.Extend when the region cannot grow by the requested number of bytes
var ErrExhausted = errors.New("heap: region exhausted")

// ErrInvalidGrowth is returned by Extender.Extend when the requested growth is not a positive number of bytes
var ErrInvalidGrowth = errors.New("heap: growth must be a positive number of bytes")

// Extender grows a single contiguous region of memory, in the manner of sbrk. The region starts at
// Base() and currently ends at Base()+Size(). Growth is monotonic: there is no way to shrink the
// region once memory has been committed.
//
// Extender implementations are not synchronized: the consumer owns all calls to Extend.
type Extender interface {
	// Extend commits n more bytes at the current end of the region and returns the offset at which
	// the new bytes start (which is the value Size() returned before the call). On failure the region
	// is unchanged and the error wraps ErrExhausted or ErrInvalidGrowth.
	Extend(n int) (int, error)
	// Size returns the number of committed bytes in the region
	Size() int
	// Base returns the address of the first byte of the region. It does not change over the
	// lifetime of the Extender.
	Base() uintptr
	// Bytes returns the committed region. The returned slice aliases the region and remains
	// valid after later calls to Extend, but will not include memory committed by them.
	Bytes() []byte
}
