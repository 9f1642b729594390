// Package buffer implements the paged text accumulator used by view rendering.
// Fragments are stored by reference in fixed-capacity segments rented from a
// shared pool through a per-scope Allocator. A PageBuffer chains segments in
// emission order and can hand its pages to another PageBuffer without copying
// the fragments, merging sparse pages into the destination's tail page.
//
// Nothing in this package is safe for concurrent use except the SharedPool.
// One Allocator, and every PageBuffer built on it, belongs to a single render.
package buffer
