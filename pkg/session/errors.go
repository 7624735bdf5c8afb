package session

import "errors"

var (
	// ErrAttributeNotFound is returned when reading an unbound attribute.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrAttributeType is returned when a bound attribute has an unexpected type.
	ErrAttributeType = errors.New("attribute has unexpected type")
)
