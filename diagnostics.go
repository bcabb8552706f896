package bmalloc

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/bmalloc/memutils"
	"github.com/vkngwrapper/bmalloc/memutils/metadata"
)

// HeapBounds returns the offsets, relative to the extender's base, of the start and end of the
// allocator's heap. Both are 0 before the allocator is initialized.
func (a *Allocator) HeapBounds() (start, end int) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.heapStart, a.heapEnd
}

// Validate performs internal consistency checks on the free list and walks every block in the heap.
// When the allocator is functioning correctly, it should not be possible for this method to return an
// error, unless a caller has written outside of an allocation. It is expensive.
func (a *Allocator) Validate() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !a.initialized {
		return nil
	}

	if a.heapEnd > a.extender.Size() {
		return errors.Errorf("the heap ends at %d, but the extender only holds %d bytes", a.heapEnd, a.extender.Size())
	}

	err := a.freeList.Validate()
	if err != nil {
		return err
	}

	var allocCount, allocBytes int
	err = a.freeList.VisitAllRegions(a.heapStart, a.heapEnd, func(block metadata.Block) error {
		if block.State == metadata.BlockAllocated {
			allocCount++
			allocBytes += block.Size
		}
		return nil
	})
	if err != nil {
		return err
	}

	if allocCount != a.allocCount {
		return errors.Errorf("the allocation count of the allocator is %d, but the heap holds %d allocated blocks", a.allocCount, allocCount)
	}

	if allocBytes != a.allocBytes {
		return errors.Errorf("the allocated size of the allocator is %d, but the allocated blocks only added up to %d", a.allocBytes, allocBytes)
	}

	return nil
}

// VisitAllRegions will call the provided callback once for each block in the heap, allocated or
// free, in address order. The allocator is locked for the duration, so the callback must not call
// back into it. This is extremely slow and should generally not be done except for diagnostic
// purposes.
func (a *Allocator) VisitAllRegions(handleBlock func(block metadata.Block) error) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !a.initialized {
		return nil
	}

	return a.freeList.VisitAllRegions(a.heapStart, a.heapEnd, handleBlock)
}

// AddStatistics sums the allocator's running totals into the provided statistics object
func (a *Allocator) AddStatistics(stats *memutils.Statistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	stats.HeapBytes += a.heapEnd - a.heapStart
	stats.AllocationCount += a.allocCount
	stats.AllocationBytes += a.allocBytes
	stats.FreeBlockCount += a.freeList.FreeCount()
	stats.FreeBytes += a.freeList.SumFreeSize()
}

// AddDetailedStatistics walks the heap and sums every block into the provided statistics object
func (a *Allocator) AddDetailedStatistics(stats *memutils.DetailedStatistics) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !a.initialized {
		return nil
	}

	return a.freeList.AddDetailedStatistics(a.heapStart, a.heapEnd, stats)
}

// PrintDetailedMap writes a json object describing the heap and every block within it
func (a *Allocator) PrintDetailedMap(writer *jwriter.Writer) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	objState := writer.Object()
	defer objState.End()

	objState.Name("HeapStart").Int(a.heapStart)
	objState.Name("HeapEnd").Int(a.heapEnd)
	objState.Name("Allocations").Int(a.allocCount)
	objState.Name("AllocatedBytes").Int(a.allocBytes)
	a.freeList.BlockJsonData(objState)

	arrayState := objState.Name("Blocks").Array()
	defer arrayState.End()

	if !a.initialized {
		return nil
	}

	return a.freeList.VisitAllRegions(a.heapStart, a.heapEnd, func(block metadata.Block) error {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Offset").Int(block.Offset)
		obj.Name("Type").String(block.State.String())
		obj.Name("Size").Int(block.Size)
		return nil
	})
}
