package config

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissing       = errors.New("value not specified")
	ErrRelativePath  = errors.New("arbitrary relative paths not allowed")
	ErrRootNotFound  = errors.New("unable to locate local root directory")
	ErrInvalidHost   = errors.New("host has invalid characters")
)
