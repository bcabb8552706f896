package bmalloc

import (
	"sync"

	"github.com/vkngwrapper/bmalloc/memutils/heap"
)

// DefaultHeapLimit is the number of bytes reserved for the allocator returned by Default
const DefaultHeapLimit = 64 * 1024 * 1024

var (
	defaultOnce      sync.Once
	defaultAllocator *Allocator
	defaultErr       error
)

// Default returns the process-wide allocator used by Malloc and Release, creating it on first use.
// Its heap is an ArenaExtender limited to DefaultHeapLimit bytes.
func Default() (*Allocator, error) {
	defaultOnce.Do(func() {
		extender, err := heap.NewArenaExtender(DefaultHeapLimit)
		if err != nil {
			defaultErr = err
			return
		}

		defaultAllocator, defaultErr = New(nil, extender, CreateOptions{})
	})

	return defaultAllocator, defaultErr
}

// Malloc allocates size bytes from the Default allocator, returning NullPointer on failure
func Malloc(size uint) Pointer {
	allocator, err := Default()
	if err != nil {
		return NullPointer
	}

	return allocator.Allocate(size)
}

// Release returns memory obtained from Malloc to the Default allocator
func Release(p Pointer) Status {
	allocator, err := Default()
	if err != nil {
		return StatusFailure
	}

	return allocator.Deallocate(p)
}
