package enums

import "fmt"

// ElementKind distinguishes the two kinds of customization elements.
type ElementKind string

const (
	ElementKindText  ElementKind = "text"
	ElementKindImage ElementKind = "image"
)

var validElementKinds = []ElementKind{
	ElementKindText,
	ElementKindImage,
}

// String implements fmt.Stringer.
func (e ElementKind) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ElementKind.
func (e ElementKind) IsValid() bool {
	for _, candidate := range validElementKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseElementKind converts raw input into an ElementKind.
func ParseElementKind(value string) (ElementKind, error) {
	for _, candidate := range validElementKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid element kind %q", value)
}
