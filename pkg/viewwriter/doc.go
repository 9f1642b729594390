// Package viewwriter provides the output sink templates write through. A
// Writer accumulates into a buffer.PageBuffer until it is flushed toward a
// downstream io.Writer, after which it forwards every write directly. The
// switch happens once and is never undone.
package viewwriter
