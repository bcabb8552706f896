package heap

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// ArenaExtender is an Extender backed by a Go byte slice. The full limit is reserved up front so that
// the backing array never moves, which keeps Base stable and lets slices returned from Bytes remain valid
// as the region grows.
type ArenaExtender struct {
	data  []byte
	limit int
}

var _ Extender = &ArenaExtender{}

// NewArenaExtender creates an ArenaExtender that can grow to at most limit bytes
func NewArenaExtender(limit int) (*ArenaExtender, error) {
	if limit < 1 {
		return nil, errors.Newf("arena limit must be positive, but was %d", limit)
	}

	return &ArenaExtender{
		data:  make([]byte, 0, limit),
		limit: limit,
	}, nil
}

func (e *ArenaExtender) Extend(n int) (int, error) {
	if n < 1 {
		return 0, errors.Wrapf(ErrInvalidGrowth, "requested %d bytes", n)
	}

	start := len(e.data)
	if n > e.limit-start {
		return 0, errors.Wrapf(ErrExhausted, "requested %d bytes with %d of %d bytes remaining", n, e.limit-start, e.limit)
	}

	e.data = e.data[:start+n]
	return start, nil
}

func (e *ArenaExtender) Size() int { return len(e.data) }

// Limit returns the maximum number of bytes the arena can grow to
func (e *ArenaExtender) Limit() int { return e.limit }

func (e *ArenaExtender) Base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(e.data[:cap(e.data)])))
}

func (e *ArenaExtender) Bytes() []byte {
	return e.data
}
