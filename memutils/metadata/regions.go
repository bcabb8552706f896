package metadata

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/bmalloc/memutils"
)

// VisitAllRegions walks every block between start and end in address order, following boundary tags,
// and calls the provided callback once for each, marking each block free or allocated according to
// whether it is in this list. This is extremely slow compared to other operations and should
// generally not be done except for diagnostic purposes.
//
// An error is returned if a block's tags are corrupt or the walk does not land exactly on end.
func (l *FreeList) VisitAllRegions(start, end int, handleBlock func(block Block) error) error {
	mem := l.memory.Bytes()
	if start < 0 || end > len(mem) || start > end {
		return errors.Errorf("region [%d, %d) lies outside of %d bytes of memory", start, end, len(mem))
	}

	freeBlocks := swiss.NewMap[int, int](uint32(l.freeCount + 1))
	err := l.VisitFreeBlocks(func(block Block) error {
		freeBlocks.Put(block.Offset, block.Next)
		return nil
	})
	if err != nil {
		return err
	}

	visitedFree := 0
	offset := start
	for offset < end {
		size, err := CheckTags(mem[:end], offset+TagSize)
		if err != nil {
			return errors.Wrapf(err, "physical block at offset %d", offset)
		}

		block := Block{
			Offset: offset,
			Size:   size,
			State:  BlockAllocated,
			Next:   NoBlock,
		}
		if next, isFree := freeBlocks.Get(offset); isFree {
			block.State = BlockFree
			block.Next = next
			visitedFree++
		}

		err = handleBlock(block)
		if err != nil {
			return err
		}

		offset += size
	}

	if offset != end {
		return errors.Errorf("the last physical block ends at offset %d, past the end of the region at %d", offset, end)
	}

	if visitedFree != freeBlocks.Count() {
		return errors.Errorf("the free list holds %d blocks, but only %d were found in the region [%d, %d)", freeBlocks.Count(), visitedFree, start, end)
	}

	return nil
}

// AddDetailedStatistics walks the region [start, end) and sums every block into stats
func (l *FreeList) AddDetailedStatistics(start, end int, stats *memutils.DetailedStatistics) error {
	stats.HeapBytes += end - start

	return l.VisitAllRegions(start, end, func(block Block) error {
		if block.State == BlockFree {
			stats.AddFreeBlock(block.Size)
		} else {
			stats.AddAllocation(block.Size)
		}
		return nil
	})
}

// BlockJsonData populates a json object with summary information about the list
func (l *FreeList) BlockJsonData(json jwriter.ObjectState) {
	json.Name("FreeBytes").Int(l.freeBytes)
	json.Name("FreeBlocks").Int(l.freeCount)
	if l.head == NoBlock {
		json.Name("Head").Null()
	} else {
		json.Name("Head").Int(l.head)
	}
}
