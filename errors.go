package ira

import "errors"

// Common errors for message validation and store construction.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrMessageTooLong   = errors.New("message exceeds maximum length")
	ErrNotFound         = errors.New("message not found")
)
