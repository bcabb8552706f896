//go:build (linux || darwin || freebsd) && (amd64 || arm64)

package bmalloc

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/bmalloc/memutils/heap"
	"github.com/vkngwrapper/bmalloc/memutils/metadata"
)

func TestHeapNeverOutgrowsBoundaryTag(t *testing.T) {
	extender, err := heap.NewMmapExtender(10 << 30)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, extender.Close())
	}()

	allocator, err := New(nil, extender, CreateOptions{})
	require.NoError(t, err)

	p1, err := allocator.Alloc(3 << 30)
	if errors.Is(err, heap.ErrExhausted) {
		t.Skip("unable to commit 3GiB of address space")
	}
	require.NoError(t, err)

	// Two of these would merge into a block whose size no longer fits in a tag
	_, err = allocator.Alloc(3 << 30)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.False(t, errors.Is(err, heap.ErrExhausted))
	require.Equal(t, 3<<30+8, extender.Size())

	p2, err := allocator.Alloc(512 << 20)
	if errors.Is(err, heap.ErrExhausted) {
		t.Skip("unable to commit 512MiB of address space")
	}
	require.NoError(t, err)

	require.NoError(t, allocator.Free(p1))
	require.NoError(t, allocator.Free(p2))

	start, end := allocator.HeapBounds()
	require.LessOrEqual(t, end-start, metadata.MaxBlockSize)
	requireFreeList(t, allocator, [2]int{0, end})
}
