package model

import (
	"bytes"
	"encoding/json"
)

// OptionalString is a tri-state field for partial updates: absent (leave
// alone), null (clear) or a value. Use it with the omitzero tag.
type OptionalString struct {
	Present bool
	Value   *string
}

// Set returns a present OptionalString holding s.
func Set(s string) OptionalString {
	return OptionalString{Present: true, Value: &s}
}

// SetPtr returns a present OptionalString; nil means null.
func SetPtr(s *string) OptionalString {
	return OptionalString{Present: true, Value: s}
}

// Null returns a present, null OptionalString.
func Null() OptionalString {
	return OptionalString{Present: true}
}

// IsZero reports absence, so omitzero drops the field.
func (o OptionalString) IsZero() bool { return !o.Present }

// MarshalJSON writes the value or null.
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// UnmarshalJSON is only called when the key is present.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
