package config

import "errors"

var (
	ErrRead       = errors.New("config: cannot read file")
	ErrParse      = errors.New("config: invalid yaml")
	ErrMissingKey = errors.New("config: missing required key")
	ErrUnknownKey = errors.New("config: unknown key")
	// ErrOverlap is returned when two storage locations are equal or nested.
	ErrOverlap = errors.New("config: overlapping storage locations")
)

// MissingKeyError names a required setting that has no value.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return "config: missing required key " + e.Key
}

func (e *MissingKeyError) Unwrap() error { return ErrMissingKey }

// OverlapError names two storage locations where one contains the other.
type OverlapError struct {
	Key, Other string
}

func (e *OverlapError) Error() string {
	return "config: " + e.Key + " overlaps " + e.Other
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }
