// Package stream defines the interfaces of writers of typed values used to
// print the output of commands.
package stream

import "io"

// Writer is an interface implemented by types that consume a stream of values
// of type T.
type Writer[T any] interface {
	// Writes values to the stream, returning the number of values written and
	// any error that occurred.
	Write(values []T) (int, error)
}

// WriteCloser represents a closable stream of values of T.
//
// Writers may buffer values until they are closed, the output is complete
// only after Close returned.
type WriteCloser[T any] interface {
	Writer[T]
	io.Closer
}

// WriteAll writes all values to w, then closes it.
func WriteAll[T any](w WriteCloser[T], values []T) error {
	if _, err := w.Write(values); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
