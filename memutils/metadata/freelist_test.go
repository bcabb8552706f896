package metadata_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/bmalloc/memutils/metadata"
)

func requireFreeBlocks(t *testing.T, list *metadata.FreeList, expected ...[2]int) {
	t.Helper()

	blocks := freeBlocks(t, list)
	actual := make([][2]int, 0, len(blocks))
	totalSize := 0
	for _, block := range blocks {
		actual = append(actual, [2]int{block.Offset, block.Size})
		totalSize += block.Size
	}

	if len(expected) == 0 {
		require.Empty(t, actual)
	} else {
		require.Equal(t, expected, actual)
	}
	require.Equal(t, len(expected), list.FreeCount())
	require.Equal(t, totalSize, list.SumFreeSize())
	require.NoError(t, list.Validate())
}

func TestFreeListInsertIntoEmpty(t *testing.T) {
	mem := make(testMemory, 64)
	list := metadata.NewFreeList(mem)
	require.True(t, list.IsEmpty())
	require.Equal(t, metadata.NoBlock, list.Head())

	list.Insert(16, 32, metadata.NoBlock)

	require.False(t, list.IsEmpty())
	require.Equal(t, 16, list.Head())
	require.Equal(t, metadata.NoBlock, list.Next(16))
	requireFreeBlocks(t, list, [2]int{16, 32})

	size, err := metadata.CheckTags(mem, 20)
	require.NoError(t, err)
	require.Equal(t, 32, size)
}

func TestFreeListInsertBeforeHeadMerges(t *testing.T) {
	list, _, _ := buildLayout(t,
		layoutBlock{size: 16},
		layoutBlock{size: 32, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
	)
	requireFreeBlocks(t, list, [2]int{16, 32}, [2]int{64, 16})

	require.Equal(t, metadata.NoBlock, list.FindPredecessor(0))
	list.Insert(0, 16, metadata.NoBlock)

	require.Equal(t, 0, list.Head())
	requireFreeBlocks(t, list, [2]int{0, 48}, [2]int{64, 16})
}

func TestFreeListInsertMergesBothSides(t *testing.T) {
	list, _, _ := buildLayout(t,
		layoutBlock{size: 16},
		layoutBlock{size: 32, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
	)

	prev := list.FindPredecessor(48)
	require.Equal(t, 16, prev)
	list.Insert(48, 16, prev)

	requireFreeBlocks(t, list, [2]int{16, 64})
}

func TestFreeListInsertMergesBackward(t *testing.T) {
	list, _, _ := buildLayout(t,
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 16},
		layoutBlock{size: 16, free: true},
	)

	list.Insert(16, 16, list.FindPredecessor(16))

	requireFreeBlocks(t, list, [2]int{0, 32}, [2]int{48, 16})
}

func TestFreeListInsertMergesForward(t *testing.T) {
	list, _, _ := buildLayout(t,
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 16},
		layoutBlock{size: 16, free: true},
	)

	list.Insert(32, 16, list.FindPredecessor(32))

	requireFreeBlocks(t, list, [2]int{0, 16}, [2]int{32, 32})
}

func TestFreeListInsertWithoutNeighbors(t *testing.T) {
	list, _, _ := buildLayout(t,
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 16},
		layoutBlock{size: 16},
		layoutBlock{size: 16, free: true},
	)

	list.Insert(32, 16, list.FindPredecessor(32))

	requireFreeBlocks(t, list, [2]int{0, 16}, [2]int{32, 16}, [2]int{64, 16})
}

func TestFreeListRemove(t *testing.T) {
	list, mem, _ := buildLayout(t,
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 24, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 32, free: true},
	)
	requireFreeBlocks(t, list, [2]int{0, 16}, [2]int{32, 24}, [2]int{72, 32})

	list.Remove(32, 0)
	requireFreeBlocks(t, list, [2]int{0, 16}, [2]int{72, 32})

	// Removal leaves the block's memory alone
	size, err := metadata.CheckTags(mem, 36)
	require.NoError(t, err)
	require.Equal(t, 24, size)

	list.Remove(0, metadata.NoBlock)
	require.Equal(t, 72, list.Head())
	requireFreeBlocks(t, list, [2]int{72, 32})

	list.Remove(72, metadata.NoBlock)
	require.True(t, list.IsEmpty())
	requireFreeBlocks(t, list)
}

func TestFreeListBestFit(t *testing.T) {
	list, _, _ := buildLayout(t,
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 32, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 24, free: true},
		layoutBlock{size: 16},
	)

	offset, prev, found := list.FindBestFit(24)
	require.True(t, found)
	require.Equal(t, 80, offset)
	require.Equal(t, 32, prev)

	offset, prev, found = list.FindBestFit(17)
	require.True(t, found)
	require.Equal(t, 80, offset)
	require.Equal(t, 32, prev)

	offset, prev, found = list.FindBestFit(16)
	require.True(t, found)
	require.Equal(t, 0, offset)
	require.Equal(t, metadata.NoBlock, prev)

	offset, prev, found = list.FindBestFit(32)
	require.True(t, found)
	require.Equal(t, 32, offset)
	require.Equal(t, 0, prev)

	_, _, found = list.FindBestFit(40)
	require.False(t, found)
}

func TestFreeListBestFitTieKeepsLowestAddress(t *testing.T) {
	list, _, _ := buildLayout(t,
		layoutBlock{size: 48, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 32, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 32, free: true},
		layoutBlock{size: 16},
	)

	offset, prev, found := list.FindBestFit(24)
	require.True(t, found)
	require.Equal(t, 64, offset)
	require.Equal(t, 0, prev)
}

func TestFreeListBestFitExactMatchWins(t *testing.T) {
	list, _, _ := buildLayout(t,
		layoutBlock{size: 40, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 24, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 24, free: true},
		layoutBlock{size: 16},
	)

	offset, prev, found := list.FindBestFit(24)
	require.True(t, found)
	require.Equal(t, 56, offset)
	require.Equal(t, 0, prev)
}

func TestFreeListBestFitEmpty(t *testing.T) {
	list := metadata.NewFreeList(make(testMemory, 64))

	offset, prev, found := list.FindBestFit(16)
	require.False(t, found)
	require.Equal(t, metadata.NoBlock, offset)
	require.Equal(t, metadata.NoBlock, prev)
}

func TestFreeListFindPredecessor(t *testing.T) {
	list, _, _ := buildLayout(t,
		layoutBlock{size: 16},
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
	)

	require.Equal(t, metadata.NoBlock, list.FindPredecessor(0))
	require.Equal(t, 16, list.FindPredecessor(32))
	require.Equal(t, 48, list.FindPredecessor(64))
	require.Equal(t, 80, list.FindPredecessor(96))

	empty := metadata.NewFreeList(make(testMemory, 64))
	require.Equal(t, metadata.NoBlock, empty.FindPredecessor(32))
}

func TestFreeListClear(t *testing.T) {
	list, _, _ := buildLayout(t,
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
	)

	list.Clear()
	requireFreeBlocks(t, list)
}

func TestFreeListValidateAdjacent(t *testing.T) {
	list, mem, _ := buildLayout(t,
		layoutBlock{size: 16, free: true},
		layoutBlock{size: 16},
		layoutBlock{size: 16, free: true},
	)

	// Grow the first block over the allocated one without telling the list
	metadata.Encode(mem, 0, 32)
	binary.LittleEndian.PutUint64(mem[metadata.TagSize:], 32)

	require.ErrorContains(t, list.Validate(), "were not merged")
}

func TestFreeListValidateCorruptTags(t *testing.T) {
	list, mem, _ := buildLayout(t,
		layoutBlock{size: 16},
		layoutBlock{size: 24, free: true},
		layoutBlock{size: 16},
	)

	binary.LittleEndian.PutUint32(mem[36:], 8)

	require.ErrorIs(t, list.Validate(), metadata.ErrTagMismatch)
}

func TestFreeListValidateOrder(t *testing.T) {
	mem := make(testMemory, 64)
	list := metadata.NewFreeList(mem)

	list.Insert(32, 16, metadata.NoBlock)
	// Wrong hint: the block belongs after the head, not before it
	list.Insert(0, 16, 32)

	require.ErrorContains(t, list.Validate(), "ascending order")
}
