package linereader

import "errors"

var (
	ErrNotFound    = errors.New("file not found")
	ErrIsDirectory = errors.New("path is a directory")
	ErrNotOpen     = errors.New("no file open")
)
