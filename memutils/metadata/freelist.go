package metadata

import (
	"github.com/cockroachdb/errors"
)

// Memory is the region that a FreeList writes its boundary tags and links into. heap.Extender
// satisfies this interface.
type Memory interface {
	// Bytes returns the full managed region. Offsets used by the FreeList are indices into this slice.
	Bytes() []byte
}

// FreeList is an address-ordered, singly-linked list of free blocks whose links live inside the
// payloads of the blocks themselves. Adjacent free blocks are merged as they are inserted, so
// no two blocks in the list ever touch.
//
// FreeList performs no synchronization of its own.
type FreeList struct {
	memory Memory

	head      int
	freeCount int
	freeBytes int
}

// NewFreeList creates an empty FreeList over the provided memory
func NewFreeList(memory Memory) *FreeList {
	return &FreeList{
		memory: memory,
		head:   NoBlock,
	}
}

// Clear empties the list. Memory belonging to the blocks that were listed is left untouched.
func (l *FreeList) Clear() {
	l.head = NoBlock
	l.freeCount = 0
	l.freeBytes = 0
}

// Head returns the offset of the lowest-addressed free block, or NoBlock if the list is empty
func (l *FreeList) Head() int { return l.head }

// FreeCount returns the number of blocks in the list
func (l *FreeList) FreeCount() int { return l.freeCount }

// SumFreeSize returns the total size in bytes of all blocks in the list
func (l *FreeList) SumFreeSize() int { return l.freeBytes }

// IsEmpty will return true if there are no free blocks
func (l *FreeList) IsEmpty() bool { return l.head == NoBlock }

// Next returns the offset of the free block following the one at offset, or NoBlock
func (l *FreeList) Next(offset int) int {
	return readLink(l.memory.Bytes(), offset)
}

// Insert adds the block at offset to the list as a free block of the given size, directly after prev.
// prev must be the listed block with the highest offset below offset, or NoBlock if there is no such
// block. Insert does not search for the correct position and trusts prev completely.
//
// Once linked, the block is merged with prev and/or its new successor if either is byte-adjacent.
func (l *FreeList) Insert(offset, size, prev int) {
	mem := l.memory.Bytes()

	var next int
	if prev == NoBlock {
		next = l.head
		l.head = offset
	} else {
		next = readLink(mem, prev)
		writeLink(mem, prev, offset)
	}

	Encode(mem, offset, size)
	writeLink(mem, offset, next)
	l.freeCount++
	l.freeBytes += size

	current := offset
	if prev != NoBlock && prev+blockSize(mem, prev) == offset {
		l.mergeBlocks(mem, prev, offset)
		current = prev
	}

	next = readLink(mem, current)
	if next != NoBlock && current+blockSize(mem, current) == next {
		l.mergeBlocks(mem, current, next)
	}
}

// Remove unlinks the block at offset, whose predecessor in the list is prev (NoBlock if offset is
// the head). The block's memory is left untouched.
func (l *FreeList) Remove(offset, prev int) {
	mem := l.memory.Bytes()
	next := readLink(mem, offset)

	if l.head == offset {
		l.head = next
	} else {
		writeLink(mem, prev, next)
	}

	l.freeCount--
	l.freeBytes -= blockSize(mem, offset)
}

// FindBestFit scans the list once, in address order, for the smallest block of at least size bytes.
// The first block of exactly size bytes ends the scan. Among equally-sized candidates the lowest
// address wins. The block's predecessor is returned alongside it so that it can be removed in O(1).
func (l *FreeList) FindBestFit(size int) (offset, prev int, found bool) {
	mem := l.memory.Bytes()

	best, bestPrev, bestSize := NoBlock, NoBlock, 0
	prev = NoBlock
	for current := l.head; current != NoBlock; current = readLink(mem, current) {
		currentSize := blockSize(mem, current)
		if currentSize == size {
			return current, prev, true
		}

		if currentSize > size && (best == NoBlock || currentSize < bestSize) {
			best, bestPrev, bestSize = current, prev, currentSize
		}

		prev = current
	}

	return best, bestPrev, best != NoBlock
}

// FindPredecessor returns the listed block with the highest offset below offset, which is the
// prev argument Insert requires. It returns NoBlock if the list is empty or its head lies above offset.
func (l *FreeList) FindPredecessor(offset int) int {
	if l.head == NoBlock || l.head > offset {
		return NoBlock
	}

	mem := l.memory.Bytes()
	current := l.head
	for next := readLink(mem, current); next != NoBlock && next < offset; next = readLink(mem, current) {
		current = next
	}

	return current
}

// VisitFreeBlocks calls the provided callback once for each block in the list, in address order
func (l *FreeList) VisitFreeBlocks(handleBlock func(block Block) error) error {
	mem := l.memory.Bytes()

	for current := l.head; current != NoBlock; {
		next := readLink(mem, current)
		err := handleBlock(Block{
			Offset: current,
			Size:   blockSize(mem, current),
			State:  BlockFree,
			Next:   next,
		})
		if err != nil {
			return err
		}
		current = next
	}

	return nil
}

// Validate performs internal consistency checks on the list: every block must lie within memory,
// have matching boundary tags, and sit strictly above and apart from its predecessor. The running
// count and byte totals must agree with what is found.
func (l *FreeList) Validate() error {
	mem := l.memory.Bytes()

	var count, bytes int
	prev, prevEnd := NoBlock, 0
	for current := l.head; current != NoBlock; current = readLink(mem, current) {
		if current < 0 || current > len(mem)-Align(MinBlockSize) {
			return errors.Errorf("free block at offset %d lies outside of %d bytes of memory", current, len(mem))
		}

		if prev != NoBlock {
			if current <= prev {
				return errors.Errorf("free block at offset %d follows the block at offset %d, but the list must be in ascending order", current, prev)
			}
			if current < prevEnd {
				return errors.Errorf("free block at offset %d overlaps the block at offset %d", current, prev)
			}
			if current == prevEnd {
				return errors.Errorf("free block at offset %d is adjacent to the block at offset %d, but they were not merged", current, prev)
			}
		}

		size, err := CheckTags(mem, current+TagSize)
		if err != nil {
			return errors.Wrapf(err, "free block at offset %d", current)
		}
		if size < Align(MinBlockSize) {
			return errors.Errorf("free block at offset %d has size %d, below the minimum of %d", current, size, Align(MinBlockSize))
		}

		count++
		bytes += size
		prev, prevEnd = current, current+size
	}

	if count != l.freeCount {
		return errors.Errorf("the free count of the list is %d, but %d blocks were found", l.freeCount, count)
	}

	if bytes != l.freeBytes {
		return errors.Errorf("the free size of the list is %d, but the free blocks only added up to %d", l.freeBytes, bytes)
	}

	return nil
}

func (l *FreeList) mergeBlocks(mem []byte, first, second int) {
	next := readLink(mem, second)
	Encode(mem, first, blockSize(mem, first)+blockSize(mem, second))
	writeLink(mem, first, next)
	l.freeCount--
}
