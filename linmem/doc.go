// Package linmem provides 32-bit linear memories and allocators for C-layout
// message objects.
//
// Two backends implement rmwcdr.Memory and rmwcdr.Allocator:
//
//	Buffer          - in-process byte slice with a bump allocator
//	GuestMemory     - a wazero guest memory (api.Memory)
//	GuestAllocator  - the guest's cabi_realloc export
//	Heap            - host-side allocator carving blocks out of a guest memory
//
// Address 0 is never handed out, so a zero pointer always means "no storage".
// Freed blocks are kept on a free list keyed by size and alignment and are
// reused as-is: a fresh block may hold stale bytes.
//
// # Thread Safety
//
// Buffer and Heap are not safe for concurrent use. GuestAllocator serializes
// calls into the guest.
package linmem
