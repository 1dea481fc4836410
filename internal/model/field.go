package model

import (
	"bytes"
	"encoding/json"
)

// Field is an optional value in a patch. The zero Field is absent and leaves
// the stored value unchanged; a JSON null clears it; any other JSON value
// replaces it.
type Field[T any] struct {
	value T
	set   bool
	null  bool
}

// Set returns a Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Clear returns a Field that clears the stored value.
func Clear[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// IsSet reports whether the field was supplied, with a value or as null.
func (f Field[T]) IsSet() bool {
	return f.set
}

// IsNull reports whether the field was supplied as null.
func (f Field[T]) IsNull() bool {
	return f.set && f.null
}

// Value returns the supplied value. ok is false when the field is absent or null.
func (f Field[T]) Value() (v T, ok bool) {
	if !f.set || f.null {
		return v, false
	}
	return f.value, true
}

// UnmarshalJSON implements json.Unmarshaler. It is only called for keys
// present in the input, which is what distinguishes absent from null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

// validationValue exposes the value to the validator; absent and null
// fields validate as nil.
func (f Field[T]) validationValue() any {
	v, ok := f.Value()
	if !ok {
		return nil
	}
	return v
}
