package domain

import "unique"

// InternedString is a value object that wraps a unique.Handle[string].
// Target names and file paths repeat heavily across the rule graph and the
// engine's bookkeeping maps, so interning them keeps comparisons cheap and
// memory flat.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString interns s and returns a handle to it.
func NewInternedString(s string) InternedString {
	return InternedString{
		h: unique.Make(s),
	}
}

// String returns the underlying string value.
func (is InternedString) String() string {
	var zero unique.Handle[string]
	if is.h == zero {
		return ""
	}
	return is.h.Value()
}

// MarshalText implements encoding.TextMarshaler.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (is *InternedString) UnmarshalText(text []byte) error {
	is.h = unique.Make(string(text))
	return nil
}
