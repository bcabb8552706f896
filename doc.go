// Package bmalloc is a general-purpose memory allocator that manages a single region of memory grown
// on demand through a heap.Extender, in the manner of a classic sbrk-based malloc.
//
// Every block in the heap carries its total size in a 4-byte boundary tag at each end. Free blocks
// additionally hold a link to the next free block, forming a singly-linked list in address order.
// Allocation searches that list for the smallest block that fits (best fit), splits off any usable
// remainder, and grows the heap when nothing fits. Freeing a block inserts it back into the list at
// its address-ordered position and merges it with any free neighbor it touches, so the list never
// contains two adjacent blocks.
//
// A freed pointer is checked against the heap bounds and its boundary tags before anything is modified,
// so a pointer that was never allocated, or whose tags were overwritten by a buffer overrun, is
// rejected with an error rather than corrupting the free list.
//
// Allocator exposes both a Go-style API (Alloc and Free, which return errors) and a C-style one
// (Allocate and Deallocate, which return NullPointer and a Status). Malloc and Release use a
// process-wide allocator created on first use.
//
// The memutils/metadata package holds the boundary tag encoding and the free list itself, and
// memutils/heap provides the extenders.
package bmalloc
