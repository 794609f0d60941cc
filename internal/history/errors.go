package history

import "errors"

var (
	ErrInvalidRevision = errors.New("invalid revision id")
	ErrHeadNotFound    = errors.New("HEAD not found")
	ErrInvalidHead     = errors.New("unable to resolve HEAD")
	ErrRefNotFound     = errors.New("ref not found")
	ErrReflogNotFound  = errors.New("reflog not found")
	ErrRepository      = errors.New("failed to open repository")
)
