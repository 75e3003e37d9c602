package flags

import (
	"bytes"
	"encoding/json"
)

// Nullable is a JSON field that distinguishes an absent value, an explicit
// null and a concrete value. Use it with the `omitzero` tag so an unset
// field is left out when encoding.
type Nullable[T any] struct {
	Set   bool // Field was present in the payload
	Null  bool // Field was present and null
	Value T
}

// Some returns a Nullable holding a value
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: v}
}

// Null returns a Nullable holding an explicit null
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true, Null: true}
}

// FromPtr returns an explicit null for a nil pointer and a value otherwise
func FromPtr[T any](v *T) Nullable[T] {
	if v == nil {
		return Null[T]()
	}
	return Some(*v)
}

// Ptr returns a pointer to a copy of the value, or nil when unset or null
func (n Nullable[T]) Ptr() *T {
	if !n.Set || n.Null {
		return nil
	}
	v := n.Value
	return &v
}

// Present reports whether the field holds a concrete value
func (n Nullable[T]) Present() bool {
	return n.Set && !n.Null
}

// IsZero reports whether the field was never set
func (n Nullable[T]) IsZero() bool {
	return !n.Set
}

// MarshalJSON implements json.Marshaler
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON implements json.Unmarshaler. It is only called for fields
// present in the payload.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Null = true
		var zero T
		n.Value = zero
		return nil
	}

	n.Null = false
	return json.Unmarshal(data, &n.Value)
}
