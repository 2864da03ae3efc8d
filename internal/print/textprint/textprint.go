package textprint

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// encodeFunc writes the text representation of a table cell.
type encodeFunc func(io.Writer, reflect.Value) error

// Cells may not span multiple lines or columns of the table.
var cellReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func writeCell(w io.Writer, s string) error {
	_, err := cellReplacer.WriteString(w, s)
	return err
}

func encodeBool(w io.Writer, v reflect.Value) error {
	return writeCell(w, strconv.FormatBool(v.Bool()))
}

func encodeInt(w io.Writer, v reflect.Value) error {
	return writeCell(w, strconv.FormatInt(v.Int(), 10))
}

func encodeUint(w io.Writer, v reflect.Value) error {
	return writeCell(w, strconv.FormatUint(v.Uint(), 10))
}

func encodeString(w io.Writer, v reflect.Value) error {
	return writeCell(w, v.String())
}

func encodeStringer(w io.Writer, v reflect.Value) error {
	return writeCell(w, v.Interface().(fmt.Stringer).String())
}

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

func encodeFuncOf(t reflect.Type) encodeFunc {
	if t.Implements(stringerType) {
		return encodeStringer
	}
	switch t.Kind() {
	case reflect.Bool:
		return encodeBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return encodeInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return encodeUint
	case reflect.String:
		return encodeString
	case reflect.Pointer:
		return encodeFuncOfPointer(t.Elem())
	case reflect.Slice:
		return encodeFuncOfSlice(t.Elem())
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			panic("cannot encode maps with keys of type " + t.Key().String())
		}
		return encodeFuncOfMap(t.Elem())
	default:
		panic("cannot encode values of type " + t.String())
	}
}

func encodeFuncOfPointer(t reflect.Type) encodeFunc {
	encode := encodeFuncOf(t)
	return func(w io.Writer, v reflect.Value) error {
		if v.IsNil() {
			return writeCell(w, "(none)")
		}
		return encode(w, v.Elem())
	}
}

func encodeFuncOfSlice(t reflect.Type) encodeFunc {
	encode := encodeFuncOf(t)
	return func(w io.Writer, v reflect.Value) error {
		for i, n := 0, v.Len(); i < n; i++ {
			if i != 0 {
				if _, err := io.WriteString(w, ", "); err != nil {
					return err
				}
			}
			if err := encode(w, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
}

// Map entries are written as key:value pairs in the order of their keys.
func encodeFuncOfMap(t reflect.Type) encodeFunc {
	encode := encodeFuncOf(t)
	return func(w io.Writer, v reflect.Value) error {
		keys := v.MapKeys()
		slices.SortFunc(keys, func(k1, k2 reflect.Value) bool {
			return k1.String() < k2.String()
		})

		for i, key := range keys {
			if i != 0 {
				if _, err := io.WriteString(w, ", "); err != nil {
					return err
				}
			}
			if err := writeCell(w, key.String()+":"); err != nil {
				return err
			}
			if err := encode(w, v.MapIndex(key)); err != nil {
				return err
			}
		}
		return nil
	}
}

func encodeFuncOfStructField(t reflect.Type, index []int) encodeFunc {
	encode := encodeFuncOf(t)
	return func(w io.Writer, v reflect.Value) error {
		return encode(w, v.FieldByIndex(index))
	}
}
