package common

import "errors"

var (
	ErrConfiguration = errors.New("configuration error")
	ErrInvalidValue  = errors.New("invalid value")
	ErrOutOfRange    = errors.New("value out of range")
	ErrUnsupported   = errors.New("unsupported by motion strategy")
)
