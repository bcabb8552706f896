package bmalloc

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/bmalloc/internal/utils"
	"github.com/vkngwrapper/bmalloc/memutils/heap"
	"github.com/vkngwrapper/bmalloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags

	// InitialHeapSize is the number of bytes the heap is grown by when the allocator is first used.
	// That memory is placed in the free list as a single block so that early allocations are split
	// from it rather than growing the heap one request at a time. It is rounded up to a valid block
	// size. If the growth fails, the allocator starts with an empty heap instead. Leave it at 0 to
	// grow only on demand.
	InitialHeapSize int
}

// New creates a new Allocator. The allocator does not touch the extender until the first call to Alloc.
//
// logger - Receives debug output about heap growth and warnings about rejected frees. If nil, logging
// is discarded.
//
// extender - The region the allocator manages. The allocator must be the only consumer growing it.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, extender heap.Extender, options CreateOptions) (*Allocator, error) {
	if extender == nil {
		return nil, errors.New("bmalloc.New requires a heap.Extender")
	}
	if options.InitialHeapSize < 0 {
		return nil, errors.Newf("CreateOptions.InitialHeapSize must not be negative, but was %d", options.InitialHeapSize)
	}
	if options.InitialHeapSize > metadata.MaxBlockSize {
		return nil, errors.Newf("CreateOptions.InitialHeapSize must be at most %d, but was %d", metadata.MaxBlockSize, options.InitialHeapSize)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}

	allocator := &Allocator{
		mutex:       utils.OptionalMutex{UseMutex: options.Flags&CreateExternallySynchronized == 0},
		logger:      logger,
		createFlags: options.Flags,
		extender:    extender,
		freeList:    metadata.NewFreeList(extender),
		heapLimit:   metadata.MaxBlockSize,
	}

	if options.InitialHeapSize > 0 {
		allocator.initialHeapSize = metadata.Align(options.InitialHeapSize)
	}

	return allocator, nil
}
