package remote

import "errors"

var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
	ErrConnectFailed    = errors.New("failed to connect")
	ErrLoginFailed      = errors.New("failed to log in")
	ErrSizeQuery        = errors.New("failed to query remote file size")
	ErrTooLarge         = errors.New("remote file too large")
	ErrTransferFailed   = errors.New("transfer failed")
	ErrCommandFailed    = errors.New("remote command failed")
)
