package bmalloc

import "fmt"

// Pointer is the address of the first payload byte of an allocation
type Pointer uintptr

// NullPointer is returned from failed allocations
const NullPointer Pointer = 0

func (p Pointer) String() string {
	return fmt.Sprintf("%#x", uintptr(p))
}

// Status is the result of Deallocate
type Status int

const (
	StatusSuccess Status = 0
	StatusFailure Status = 1
)
