// Package jsonprint prints streams of values as indented JSON documents.
package jsonprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/stealthrocket/httpchat/internal/stream"
)

// NewWriter returns a writer printing each value as a separate JSON document.
//
// Values are encoded in full before being written, a value that fails to
// encode leaves no partial document in the output.
//
// Characters significant in HTML are written as is, chat messages are stored
// already escaped and would otherwise be printed escaped twice.
func NewWriter[T any](w io.Writer) stream.WriteCloser[T] {
	jw := &writer[T]{output: w}
	jw.encoder = json.NewEncoder(&jw.buffer)
	jw.encoder.SetEscapeHTML(false)
	jw.encoder.SetIndent("", "  ")
	return jw
}

type writer[T any] struct {
	output  io.Writer
	buffer  bytes.Buffer
	encoder *json.Encoder
}

func (w *writer[T]) Write(values []T) (int, error) {
	for n := range values {
		w.buffer.Reset()
		if err := w.encoder.Encode(values[n]); err != nil {
			return n, fmt.Errorf("encoding %T as json: %w", values[n], err)
		}
		if _, err := w.output.Write(w.buffer.Bytes()); err != nil {
			return n, err
		}
	}
	return len(values), nil
}

func (w *writer[T]) Close() error {
	return nil
}
