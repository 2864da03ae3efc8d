// Package textprint prints streams of values as human readable text.
package textprint

import (
	"io"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/stealthrocket/httpchat/internal/stream"
)

type TableOption[T any] func(*tableWriter[T])

func Header[T any](enable bool) TableOption[T] {
	return func(t *tableWriter[T]) { t.header = enable }
}

// List limits the output to the first column.
func List[T any](enable bool) TableOption[T] {
	return func(t *tableWriter[T]) { t.list = enable }
}

// NewTableWriter returns a writer printing values as the rows of a table.
// Columns are the exported fields of T, named after their "text" tag. Rows
// are buffered and printed when the writer is closed.
func NewTableWriter[T any](w io.Writer, opts ...TableOption[T]) stream.WriteCloser[T] {
	t := &tableWriter[T]{
		output: w,
		header: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type tableWriter[T any] struct {
	output io.Writer
	values []T
	header bool
	list   bool
}

func (t *tableWriter[T]) Write(values []T) (int, error) {
	t.values = append(t.values, values...)
	return len(values), nil
}

func (t *tableWriter[T]) Close() error {
	tw := tabwriter.NewWriter(t.output, 0, 4, 2, ' ', 0)

	valueOf := func(values []T, index int) reflect.Value {
		return reflect.ValueOf(&values[index]).Elem()
	}

	var v T
	valueType := reflect.TypeOf(v)
	if valueType.Kind() == reflect.Pointer {
		valueType = valueType.Elem()
		valueOf = func(values []T, index int) reflect.Value {
			return reflect.ValueOf(values[index]).Elem()
		}
	}

	var columns []string
	var encoders []encodeFunc
	for _, f := range reflect.VisibleFields(valueType) {
		name := f.Name
		if textTag := f.Tag.Get("text"); textTag != "" {
			name, _, _ = strings.Cut(textTag, ",")
		}
		if name == "-" || !f.IsExported() {
			continue
		}
		columns = append(columns, name)
		encoders = append(encoders, encodeFuncOfStructField(f.Type, f.Index))
	}

	if t.list {
		columns = columns[:1]
		encoders = encoders[:1]
	}

	// Cells are separated by tabs, the last column is not tab-terminated so
	// rows are not padded with trailing spaces.
	if t.header {
		for i, name := range columns {
			if i != 0 {
				if _, err := io.WriteString(tw, "\t"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(tw, name); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(tw, "\n"); err != nil {
			return err
		}
	}

	for n := range t.values {
		v := valueOf(t.values, n)
		w := io.Writer(tw)

		for i, enc := range encoders {
			if i != 0 {
				if _, err := io.WriteString(w, "\t"); err != nil {
					return err
				}
			}
			if err := enc(w, v); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	return tw.Flush()
}
