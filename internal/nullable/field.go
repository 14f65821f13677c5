// Package nullable provides a tri-state field for partial updates.
//
// A Field is either omitted (the zero value), explicitly null, or set to a
// value. When decoded from JSON, an absent key leaves the field omitted, a
// literal null marks it null, and anything else is decoded as the value.
package nullable

import (
	"bytes"
	"encoding/json"
)

type state uint8

const (
	stateOmitted state = iota
	stateNull
	stateValue
)

type Field[T any] struct {
	value T
	state state
}

func Value[T any](v T) Field[T] {
	return Field[T]{value: v, state: stateValue}
}

func Null[T any]() Field[T] {
	return Field[T]{state: stateNull}
}

// IsSet reports whether the field was present, either as null or as a value.
func (f Field[T]) IsSet() bool {
	return f.state != stateOmitted
}

func (f Field[T]) IsNull() bool {
	return f.state == stateNull
}

func (f Field[T]) IsValue() bool {
	return f.state == stateValue
}

// Get returns the value and whether one is present.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == stateValue
}

// Apply overwrites dst when the field holds a value.
// Null and omitted fields leave dst untouched; required fields must
// reject null before reaching Apply.
func (f Field[T]) Apply(dst *T) {
	if f.state == stateValue {
		*dst = f.value
	}
}

// ApplyPtr applies the field to an optional destination:
// a value is stored, null clears it, omission keeps it.
func (f Field[T]) ApplyPtr(dst **T) {
	switch f.state {
	case stateValue:
		v := f.value
		*dst = &v
	case stateNull:
		*dst = nil
	}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.value = zero
		f.state = stateNull
		return nil
	}

	var v T
	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}
	f.value = v
	f.state = stateValue
	return nil
}

// MarshalJSON encodes omitted and null fields as null.
// Use omitzero on the struct tag to drop omitted fields entirely.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != stateValue {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// IsZero reports whether the field is omitted, so that encoding/json
// drops it under the omitzero option.
func (f Field[T]) IsZero() bool {
	return f.state == stateOmitted
}
