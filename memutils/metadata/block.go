package metadata

// NoBlock is the offset used for the absence of a block: the end of the free list, or the
// head-of-list sentinel when passed as a predecessor
const NoBlock int = -1

// BlockState identifies which of the two layouts a block's memory currently holds
type BlockState uint32

const (
	// BlockAllocated indicates that the block's payload belongs to a caller. Only the boundary tags
	// are meaningful to the allocator.
	BlockAllocated BlockState = iota
	// BlockFree indicates that the block is in the free list and that the first LinkSize bytes of its
	// payload hold the offset of the next free block
	BlockFree
)

var blockStateMapping = map[BlockState]string{
	BlockAllocated: "Allocated",
	BlockFree:      "Free",
}

func (s BlockState) String() string {
	return blockStateMapping[s]
}

// Block is the decoded view of a single block of managed memory
type Block struct {
	// Offset is the offset of the block's header
	Offset int
	// Size is the total size of the block in bytes, including both boundary tags
	Size int
	State BlockState
	// Next is the offset of the following free block, or NoBlock. It is always NoBlock for
	// allocated blocks.
	Next int
}

// Payload returns the offset of the first byte after the block's header
func (b Block) Payload() int {
	return b.Offset + TagSize
}

// PayloadSize returns the number of bytes available to a caller when the block is allocated
func (b Block) PayloadSize() int {
	return b.Size - 2*TagSize
}

// End returns the offset of the first byte after the block
func (b Block) End() int {
	return b.Offset + b.Size
}
