package bmalloc

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/bmalloc/internal/utils"
	"github.com/vkngwrapper/bmalloc/memutils"
	"github.com/vkngwrapper/bmalloc/memutils/heap"
	"github.com/vkngwrapper/bmalloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// Allocator hands out blocks of memory from a single region grown through a heap.Extender. Free
// blocks are kept in an address-ordered list and merged with their neighbors as soon as they are
// freed; requests are served from the smallest free block that fits, and the heap is only grown
// when nothing fits.
//
// Every method holds a single mutex for its full duration unless the allocator was created with
// CreateExternallySynchronized.
type Allocator struct {
	mutex       utils.OptionalMutex
	logger      *slog.Logger
	createFlags CreateFlags

	extender        heap.Extender
	freeList        *metadata.FreeList
	initialHeapSize int

	// heapLimit caps heapEnd-heapStart so that merging every block in the heap still yields a size that
	// fits in a boundary tag
	heapLimit int
	// growthErr is set once the extender has grown somewhere other than heapEnd. The heap can never be
	// contiguous again after that, so it is returned from every later growth attempt.
	growthErr error

	initialized bool
	heapStart   int
	heapEnd     int

	allocCount int
	allocBytes int
}

var _ memutils.Validatable = &Allocator{}

// Alloc reserves at least size bytes and returns a pointer to them. The returned memory is not zeroed.
func (a *Allocator) Alloc(size int) (Pointer, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !a.initialized {
		a.initialize()
	}

	if size == 0 {
		return NullPointer, ErrZeroSize
	}
	if size < 0 {
		return NullPointer, errors.Wrapf(ErrInvalidSize, "requested %d bytes", size)
	}
	if size > metadata.MaxBlockSize-2*metadata.TagSize {
		return NullPointer, errors.Wrapf(ErrRequestTooLarge, "requested %d bytes", size)
	}

	total := metadata.Align(size + 2*metadata.TagSize)

	offset, prev, found := a.freeList.FindBestFit(total)
	if !found {
		return a.grow(total)
	}

	blockSize := metadata.SizeOf(a.extender.Bytes(), offset+metadata.TagSize)
	a.freeList.Remove(offset, prev)

	if blockSize-total < metadata.MinBlockSize {
		// The remainder could never hold a block, so hand out the whole thing
		total = blockSize
	} else {
		a.freeList.Insert(offset+total, blockSize-total, prev)
	}

	payload := metadata.Encode(a.extender.Bytes(), offset, total)
	a.allocCount++
	a.allocBytes += total

	memutils.DebugValidate(a.freeList)

	return a.pointer(payload), nil
}

// Allocate is Alloc with the conventions of C's malloc: it returns NullPointer for zero-byte requests
// and whenever the allocation fails.
func (a *Allocator) Allocate(size uint) Pointer {
	if size > math.MaxInt {
		return NullPointer
	}

	p, err := a.Alloc(int(size))
	if err != nil {
		return NullPointer
	}
	return p
}

// Free returns memory obtained from Alloc to the allocator. The pointer is rejected, and the allocator
// left untouched, if it lies outside of the heap or its boundary tags are inconsistent.
//
// Freeing the same pointer twice is not detected when the block's tags are still intact, and will
// corrupt the free list.
func (a *Allocator) Free(p Pointer) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	offset, size, err := a.checkPointer(p)
	if err != nil {
		if !errors.Is(err, ErrNotInitialized) && !errors.Is(err, ErrNilPointer) {
			a.logger.LogAttrs(context.Background(), slog.LevelWarn, "rejected free",
				slog.String("pointer", p.String()),
				slog.Any("error", err))
		}
		return err
	}

	prev := a.freeList.FindPredecessor(offset)
	a.freeList.Insert(offset, size, prev)
	a.allocCount--
	a.allocBytes -= size

	memutils.DebugValidate(a.freeList)

	return nil
}

// Deallocate is Free with a status code instead of an error: StatusSuccess when the memory was
// returned to the allocator and StatusFailure otherwise.
func (a *Allocator) Deallocate(p Pointer) Status {
	if a.Free(p) != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// Bytes returns the payload of an allocation as a byte slice. The slice aliases the heap and is
// only valid until the pointer is freed.
func (a *Allocator) Bytes(p Pointer) ([]byte, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	offset, size, err := a.checkPointer(p)
	if err != nil {
		return nil, err
	}

	start := offset + metadata.TagSize
	end := offset + size - metadata.TagSize
	return a.extender.Bytes()[start:end:end], nil
}

// UsableSize returns the number of bytes available at p, which may be more than were requested
func (a *Allocator) UsableSize(p Pointer) (int, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	_, size, err := a.checkPointer(p)
	if err != nil {
		return 0, err
	}

	return size - 2*metadata.TagSize, nil
}

// Flags returns the flags the allocator was created with
func (a *Allocator) Flags() CreateFlags {
	return a.createFlags
}

func (a *Allocator) initialize() {
	a.initialized = true
	a.heapStart = a.extender.Size()
	a.heapEnd = a.heapStart
	a.freeList.Clear()

	if a.initialHeapSize > 0 {
		start, err := a.extender.Extend(a.initialHeapSize)
		if err != nil {
			a.logger.LogAttrs(context.Background(), slog.LevelWarn, "unable to reserve initial heap",
				slog.Int("size", a.initialHeapSize),
				slog.Any("error", err))
		} else if start != a.heapEnd {
			a.growthErr = errors.Wrapf(ErrNonContiguousHeap, "heap ends at %d but the extender grew at %d", a.heapEnd, start)
			a.logger.LogAttrs(context.Background(), slog.LevelWarn, "initial heap was not contiguous",
				slog.Int("heapStart", a.heapStart),
				slog.Int("start", start))
		} else {
			a.freeList.Insert(start, a.initialHeapSize, metadata.NoBlock)
			a.heapEnd = start + a.initialHeapSize
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::initialize",
		slog.Int("heapStart", a.heapStart),
		slog.Int("heapEnd", a.heapEnd))
}

func (a *Allocator) grow(total int) (Pointer, error) {
	if a.growthErr != nil {
		return NullPointer, a.growthErr
	}
	if total > a.heapLimit-(a.heapEnd-a.heapStart) {
		return NullPointer, errors.Wrapf(ErrOutOfMemory, "growing the heap by %d bytes would exceed the limit of %d bytes", total, a.heapLimit)
	}

	start, err := a.extender.Extend(total)
	if err != nil {
		a.logger.LogAttrs(context.Background(), slog.LevelWarn, "unable to grow heap",
			slog.Int("size", total),
			slog.Int("heapEnd", a.heapEnd),
			slog.Any("error", err))
		return NullPointer, errors.Mark(errors.Wrapf(err, "failed to grow heap by %d bytes", total), ErrOutOfMemory)
	}
	if start != a.heapEnd {
		// The extender's new bytes are lost to the allocator, and so is any later growth
		a.growthErr = errors.Wrapf(ErrNonContiguousHeap, "heap ends at %d but the extender grew at %d", a.heapEnd, start)
		a.logger.LogAttrs(context.Background(), slog.LevelWarn, "heap growth was not contiguous",
			slog.Int("heapEnd", a.heapEnd),
			slog.Int("start", start))
		return NullPointer, a.growthErr
	}

	payload := metadata.Encode(a.extender.Bytes(), start, total)
	a.heapEnd = start + total
	a.allocCount++
	a.allocBytes += total

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "Allocator::grow",
		slog.Int("size", total),
		slog.Int("heapEnd", a.heapEnd))

	return a.pointer(payload), nil
}

func (a *Allocator) pointer(payload int) Pointer {
	return Pointer(a.extender.Base() + uintptr(payload))
}

// checkPointer validates p and returns the offset and size of the block it belongs to. Nothing is
// modified.
func (a *Allocator) checkPointer(p Pointer) (offset, size int, err error) {
	if !a.initialized {
		return 0, 0, ErrNotInitialized
	}
	if p == NullPointer {
		return 0, 0, ErrNilPointer
	}

	base := a.extender.Base()
	if uintptr(p) <= base+uintptr(a.heapStart) || uintptr(p) >= base+uintptr(a.heapEnd) {
		return 0, 0, errors.Wrapf(ErrInvalidPointer, "pointer %s", p)
	}

	payload := int(uintptr(p) - base)
	if payload-metadata.TagSize < a.heapStart {
		return 0, 0, errors.Wrapf(ErrInvalidPointer, "pointer %s has no room for a header", p)
	}

	size, err = metadata.CheckTags(a.extender.Bytes()[:a.heapEnd], payload)
	if err != nil {
		return 0, 0, errors.Mark(errors.Wrapf(err, "pointer %s", p), ErrCorruptBlock)
	}

	return payload - metadata.TagSize, size, nil
}
