package bmalloc

import "github.com/cockroachdb/errors"

var (
	// ErrZeroSize is returned when zero bytes are requested. No allocation is performed.
	ErrZeroSize = errors.New("bmalloc: zero-byte allocation")
	// ErrInvalidSize is returned when a negative number of bytes is requested
	ErrInvalidSize = errors.New("bmalloc: negative allocation size")
	// ErrRequestTooLarge is returned when the requested size cannot be represented in a boundary tag
	ErrRequestTooLarge = errors.New("bmalloc: allocation too large")
	// ErrOutOfMemory is returned when no free block fits the request and the heap could not be grown,
	// either because the heap.Extender failed or because the heap would outgrow metadata.MaxBlockSize.
	// In the first case the error also matches the error returned by the heap.Extender.
	ErrOutOfMemory = errors.New("bmalloc: out of memory")
	// ErrNonContiguousHeap is returned when the heap.Extender grew somewhere other than the end of the
	// allocator's heap, which happens when something else is extending the same region. The heap never
	// grows again after that: free blocks are still handed out, but every request that needs growth
	// fails with this error.
	ErrNonContiguousHeap = errors.New("bmalloc: heap growth was not contiguous")

	// ErrNotInitialized is returned when a pointer is passed to an allocator that has never allocated
	ErrNotInitialized = errors.New("bmalloc: allocator has not been initialized")
	// ErrNilPointer is returned when NullPointer is freed
	ErrNilPointer = errors.New("bmalloc: nil pointer")
	// ErrInvalidPointer is returned when a pointer lies outside of the allocator's heap
	ErrInvalidPointer = errors.New("bmalloc: pointer is outside of the heap")
	// ErrCorruptBlock is returned when the boundary tags around a pointer are inconsistent, either
	// because the pointer was not returned by this allocator or because the tags were overwritten. The
	// error also matches the metadata tag error that was detected.
	ErrCorruptBlock = errors.New("bmalloc: corrupt block")
)
