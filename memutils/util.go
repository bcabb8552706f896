package memutils

import (
	"github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~uint32 | ~uint64 | ~uintptr
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return errors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// CheckAligned returns an error wrapping AlignmentError if value is not a multiple of alignment. alignment
// must be a power of two.
func CheckAligned[T Number](value T, alignment uint, name string) error {
	DebugCheckPow2(alignment, "alignment")
	if uint64(value)&uint64(alignment-1) != 0 {
		return errors.Wrapf(AlignmentError, "%s is %d, which is not a multiple of %d", name, value, alignment)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	DebugCheckPow2(alignment, "alignment")
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}
