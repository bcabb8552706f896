package metadata

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/bmalloc/memutils"
)

const (
	// TagSize is the width in bytes of the size words that flank every block
	TagSize = 4
	// LinkSize is the width in bytes of the next-block link that a free block stores directly
	// after its header
	LinkSize = 8
	// MinBlockSize is the smallest size a block request is raised to: room for a size word and a link.
	// After alignment every block is at least 16 bytes, which also leaves room for the footer.
	MinBlockSize = TagSize + LinkSize
	// Alignment is the granularity of block sizes and offsets
	Alignment uint = 8
	// MaxBlockSize is the largest aligned size that fits in both a boundary tag and an int. On 32-bit
	// platforms the int is the tighter limit.
	MaxBlockSize = (math.MaxUint32 >> ((64 - strconv.IntSize) / 32)) &^ (int(Alignment) - 1)
)

var (
	// ErrTagMismatch indicates that a block's header and footer do not hold the same size
	ErrTagMismatch = errors.New("boundary tags do not match")
	// ErrTagOutOfBounds indicates that a block's tags, or the block itself, lie outside of the managed memory
	ErrTagOutOfBounds = errors.New("boundary tag out of bounds")
	// ErrTagMisaligned indicates that a block's header holds a size that is not a multiple of Alignment
	ErrTagMisaligned = errors.New("boundary tag holds a misaligned size")
)

// Align returns the block size used to satisfy a request of the given number of bytes: requests below
// MinBlockSize are raised to it, and the result is rounded up to a multiple of Alignment.
func Align(requested int) int {
	if requested < MinBlockSize {
		requested = MinBlockSize
	}
	return memutils.AlignUp(requested, Alignment)
}

// Encode writes size into the header and footer of the block starting at offset and returns the
// offset of the block's payload
func Encode(mem []byte, offset, size int) int {
	binary.LittleEndian.PutUint32(mem[offset:], uint32(size))
	binary.LittleEndian.PutUint32(mem[offset+size-TagSize:], uint32(size))
	return offset + TagSize
}

// SizeOf reads the header of the block whose payload begins at payload. It does not check the footer;
// use CheckTags for untrusted offsets.
func SizeOf(mem []byte, payload int) int {
	return blockSize(mem, payload-TagSize)
}

// CheckTags verifies that the block whose payload begins at payload has a readable, aligned header
// whose value matches the footer located that many bytes after the header. It returns the block size.
// CheckTags never panics, regardless of how wrong payload is.
func CheckTags(mem []byte, payload int) (int, error) {
	header := payload - TagSize
	if header < 0 || payload > len(mem) {
		return 0, errors.Wrapf(ErrTagOutOfBounds, "header for payload at offset %d is outside of %d bytes of memory", payload, len(mem))
	}

	size := blockSize(mem, header)
	if size < 2*TagSize || size > len(mem)-header {
		return 0, errors.Wrapf(ErrTagOutOfBounds, "block at offset %d has size %d, which does not fit in %d bytes of memory", header, size, len(mem))
	}

	err := memutils.CheckAligned(size, Alignment, "block size")
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "block at offset %d", header), ErrTagMisaligned)
	}

	footer := blockSize(mem, header+size-TagSize)
	if footer != size {
		return 0, errors.Wrapf(ErrTagMismatch, "block at offset %d has header %d but footer %d", header, size, footer)
	}

	return size, nil
}

func blockSize(mem []byte, offset int) int {
	return int(binary.LittleEndian.Uint32(mem[offset:]))
}

func readLink(mem []byte, offset int) int {
	return int(int64(binary.LittleEndian.Uint64(mem[offset+TagSize:])))
}

func writeLink(mem []byte, offset, next int) {
	binary.LittleEndian.PutUint64(mem[offset+TagSize:], uint64(int64(next)))
}
