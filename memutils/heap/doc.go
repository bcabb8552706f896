// Package heap provides Extender, the sbrk-like primitive used to grow the region of memory
// managed by a bmalloc.Allocator, along with two implementations: ArenaExtender, which carves
// the region out of a reserved Go byte slice, and MmapExtender, which reserves address space from
// the operating system and commits it page by page.
//
// A gomock implementation of Extender lives in the mocks subpackage.
package heap
