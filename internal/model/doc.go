package model

import (
	"bytes"
	"encoding/json"

	"gorm.io/datatypes"
)

// Doc is a decoded JSON object from a Project's content or extra_data
// column. Getters never fail: a missing or wrongly typed value comes back as
// the zero value, and list getters return empty, non-nil slices.
type Doc map[string]any

// ParseDoc decodes raw JSON into a Doc. Anything that is not a JSON object
// yields an empty Doc.
func ParseDoc(raw []byte) Doc {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Doc{}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return Doc{}
	}
	return Doc(m)
}

// Has reports whether key is present with a non-null value.
func (d Doc) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

// Value returns the raw value under key.
func (d Doc) Value(key string) any {
	return d[key]
}

// String returns key as a string, or "" when absent or not a string.
func (d Doc) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// StringPtr is String but nil when the value is absent or not a string.
func (d Doc) StringPtr(key string) *string {
	s, ok := d[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// Bool returns key as a bool.
func (d Doc) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Strings returns the string elements of an array value in order.
func (d Doc) Strings(key string) []string {
	return AsStrings(d[key])
}

// List returns an array value, or an empty slice.
func (d Doc) List(key string) []any {
	return AsList(d[key])
}

// Docs returns the object elements of an array value in order.
func (d Doc) Docs(key string) []Doc {
	items := AsList(d[key])
	out := make([]Doc, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, Doc(m))
		}
	}
	return out
}

// Map returns an object value, or nil.
func (d Doc) Map(key string) Doc {
	if m, ok := d[key].(map[string]any); ok {
		return Doc(m)
	}
	if m, ok := d[key].(Doc); ok {
		return m
	}
	return nil
}

// MapOrEmpty is Map but never nil.
func (d Doc) MapOrEmpty(key string) Doc {
	if m := d.Map(key); m != nil {
		return m
	}
	return Doc{}
}

// JSON encodes the Doc for storage.
func (d Doc) JSON() datatypes.JSON {
	if d == nil {
		return nil
	}
	b, err := json.Marshal(map[string]any(d))
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// AsList returns v as a slice, or an empty slice when v is not an array.
func AsList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []Doc:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = map[string]any(m)
		}
		return out
	}
	return []any{}
}

// AsStrings returns the string elements of v, skipping anything else.
func AsStrings(v any) []string {
	if ss, ok := v.([]string); ok {
		return append([]string{}, ss...)
	}
	items := AsList(v)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p, or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
