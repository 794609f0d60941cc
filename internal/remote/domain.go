package remote

import (
	"context"
	"io"
)

// MaxTextSize bounds how much of a remote file FetchText buffers in memory.
const MaxTextSize int64 = 128 << 20

const DefaultPort = "21"

// preallocLimit caps the up-front buffer allocation for FetchText; larger
// files grow the buffer while streaming.
const preallocLimit int64 = 1 << 20

type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Conn is the subset of an FTP control connection the client drives.
type Conn interface {
	Login(user, password string) error
	ChangeDir(path string) error
	MakeDir(path string) error
	RemoveDir(path string) error
	RemoveDirRecur(path string) error
	FileSize(path string) (int64, error)
	Retr(path string) (io.ReadCloser, error)
	Quit() error
}

// Dialer opens a control connection to addr (host:port).
type Dialer interface {
	Dial(ctx context.Context, addr string) (Conn, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, addr string) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context, addr string) (Conn, error) {
	return f(ctx, addr)
}
