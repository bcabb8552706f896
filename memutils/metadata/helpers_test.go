package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/bmalloc/memutils/metadata"
)

type testMemory []byte

func (m testMemory) Bytes() []byte { return m }

type layoutBlock struct {
	size int
	free bool
}

// buildLayout lays the provided blocks out back to back from offset 0 and inserts the free ones
// into a new FreeList in address order
func buildLayout(t *testing.T, blocks ...layoutBlock) (*metadata.FreeList, testMemory, []int) {
	t.Helper()

	total := 0
	for _, block := range blocks {
		total += block.size
	}

	mem := make(testMemory, total)
	list := metadata.NewFreeList(mem)

	offsets := make([]int, 0, len(blocks))
	offset := 0
	for _, block := range blocks {
		offsets = append(offsets, offset)
		if block.free {
			list.Insert(offset, block.size, list.FindPredecessor(offset))
		} else {
			metadata.Encode(mem, offset, block.size)
		}
		offset += block.size
	}

	require.NoError(t, list.Validate())
	return list, mem, offsets
}

func freeBlocks(t *testing.T, list *metadata.FreeList) []metadata.Block {
	t.Helper()

	var blocks []metadata.Block
	err := list.VisitFreeBlocks(func(block metadata.Block) error {
		blocks = append(blocks, block)
		return nil
	})
	require.NoError(t, err)
	return blocks
}
