// Package render ties the buffering core to template execution. A Scope owns
// the segment allocator for one render and hands out buffers and writers that
// share it, so nested output can be moved between them without copying.
// Encoders decide how Text values are escaped before they reach a writer.
package render
