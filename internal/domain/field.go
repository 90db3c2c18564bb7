package domain

import (
	"bytes"
	"encoding/json"
)

// Field is a three-state optional used by patch types and snapshot records.
// It distinguishes a key that was absent from the payload (Set == false),
// a key explicitly set to null (Set && Null), and a key with a value
// (Set && !Null). Absent keys carry no signal and leave the stored field
// untouched; explicit null clears it; a value overwrites it. List-typed
// fields are replaced wholesale, never merged.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// NewField returns a set, non-null Field holding v.
func NewField[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// NullField returns a set Field carrying an explicit null.
func NullField[T any]() Field[T] {
	var zero T
	return Field[T]{Set: true, Null: true, Value: zero}
}

// Ptr returns a pointer to the value, or nil when the field is unset or null.
func (f Field[T]) Ptr() *T {
	if !f.Set || f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// IsZero reports whether the field is unset. It makes `json:",omitzero"`
// drop absent fields on marshal, so a round-tripped document only carries
// the keys that were actually populated.
func (f Field[T]) IsZero() bool {
	return !f.Set
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON is only invoked for keys present in the payload, which is
// what gives Field its presence semantics: encoding/json never calls it for
// absent keys, so Set stays false for them.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}
