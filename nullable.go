package checkout

import (
	"bytes"
	"encoding/json"
)

// Nullable distinguishes the three states a patch field can be in: absent
// (leave unchanged), explicit null (clear), or a value. UnmarshalJSON only
// runs when the key is present, which is what marks the field as set.
type Nullable[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// NullableOf wraps a value as a present, non-null patch field.
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Set: true}
}

// Null returns a present patch field carrying an explicit null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true, Null: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Null = true
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

// MarshalJSON implements json.Marshaler.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Null {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// IsZero makes absent fields cooperate with the omitzero struct tag.
func (n Nullable[T]) IsZero() bool {
	return !n.Set
}
