package syncer

import "errors"

var (
	ErrStartFailed = errors.New("failed to start sync tool")
	ErrSyncFailed  = errors.New("sync tool failed")
	ErrInvalidMode = errors.New("invalid sync mode")
)
