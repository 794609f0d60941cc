package ftpfx

import "errors"

var (
	ErrInvalidTLSConfig = errors.New("invalid TLS configuration")
	ErrDialFailed       = errors.New("failed to dial FTP server")
)
