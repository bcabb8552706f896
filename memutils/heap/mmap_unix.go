//go:build linux || darwin || freebsd

package heap

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/bmalloc/memutils"
	"golang.org/x/sys/unix"
)

// MmapExtender is an Extender backed by anonymous memory outside of the Go heap. The full limit is
// reserved as inaccessible address space when the extender is created, and Extend makes pages readable
// and writable as the region grows into them.
type MmapExtender struct {
	reserved  []byte
	size      int
	committed int
	pageSize  int
}

var _ Extender = &MmapExtender{}

// NewMmapExtender reserves limit bytes of address space, rounded up to the system page size
func NewMmapExtender(limit int) (*MmapExtender, error) {
	if limit < 1 {
		return nil, errors.Newf("mmap limit must be positive, but was %d", limit)
	}

	pageSize := unix.Getpagesize()
	err := memutils.CheckPow2(pageSize, "page size")
	if err != nil {
		return nil, err
	}

	limit = memutils.AlignUp(limit, uint(pageSize))
	reserved, err := unix.Mmap(-1, 0, limit, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reserve %d bytes of address space", limit)
	}

	return &MmapExtender{
		reserved: reserved,
		pageSize: pageSize,
	}, nil
}

func (e *MmapExtender) Extend(n int) (int, error) {
	if e.reserved == nil {
		return 0, errors.Wrap(ErrExhausted, "extender has been closed")
	}
	if n < 1 {
		return 0, errors.Wrapf(ErrInvalidGrowth, "requested %d bytes", n)
	}

	start := e.size
	if n > len(e.reserved)-start {
		return 0, errors.Wrapf(ErrExhausted, "requested %d bytes with %d of %d bytes remaining", n, len(e.reserved)-start, len(e.reserved))
	}

	end := start + n
	if end > e.committed {
		commitEnd := memutils.AlignUp(end, uint(e.pageSize))
		err := unix.Mprotect(e.reserved[e.committed:commitEnd], unix.PROT_READ|unix.PROT_WRITE)
		if err != nil {
			return 0, errors.Mark(errors.Wrapf(err, "failed to commit %d bytes", commitEnd-e.committed), ErrExhausted)
		}
		e.committed = commitEnd
	}

	e.size = end
	return start, nil
}

func (e *MmapExtender) Size() int { return e.size }

// Limit returns the maximum number of bytes the region can grow to
func (e *MmapExtender) Limit() int { return len(e.reserved) }

func (e *MmapExtender) Base() uintptr {
	if e.reserved == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(e.reserved)))
}

func (e *MmapExtender) Bytes() []byte {
	if e.reserved == nil {
		return nil
	}
	return e.reserved[:e.size:e.size]
}

// Close releases the reserved address space. Every slice previously returned from Bytes becomes
// invalid, so the consumer must be finished with the region before calling Close.
func (e *MmapExtender) Close() error {
	if e.reserved == nil {
		return nil
	}

	err := unix.Munmap(e.reserved)
	if err != nil {
		return errors.Wrap(err, "failed to release reserved address space")
	}

	e.reserved = nil
	e.size = 0
	e.committed = 0
	return nil
}
