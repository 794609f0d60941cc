// Package remote implements a connected/disconnected FTP client whose calls
// block until the underlying network operation settles.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"

	"github.com/apiarycd/ftpdeploy/internal/await"
	"github.com/apiarycd/ftpdeploy/internal/errlog"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Client is a thin state machine over one FTP control connection. Every
// network call goes through a single-slot await.Adapter, and every failure is
// both returned and recorded in the error log.
//
// A Client is not safe for concurrent use.
type Client struct {
	dialer  Dialer
	adapter *await.Adapter
	errs    *errlog.Log
	fs      afero.Fs

	state State
	conn  Conn
	host  string

	logger *zap.Logger
}

func NewClient(dialer Dialer, errs *errlog.Log, fs afero.Fs, logger *zap.Logger) *Client {
	if errs == nil {
		errs = errlog.New()
	}

	return &Client{
		dialer:  dialer,
		adapter: await.New(errs),
		errs:    errs,
		fs:      fs,

		state: Disconnected,

		logger: logger,
	}
}

func (c *Client) State() State {
	return c.state
}

// Connect dials host and logs in. It is only allowed while disconnected.
func (c *Client) Connect(ctx context.Context, host, user, pass string) error {
	if c.state == Connected {
		return c.fail(fmt.Errorf("%w: to %s", ErrAlreadyConnected, c.host))
	}

	addr := withDefaultPort(host)
	c.logger.Info("connecting", zap.String("addr", addr), zap.String("user", user))

	conn, err := await.Wait(ctx, c.adapter, func(ctx context.Context) (Conn, error) {
		conn, dialErr := c.dialer.Dial(ctx, addr)
		if dialErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConnectFailed, addr, dialErr)
		}

		if loginErr := conn.Login(user, pass); loginErr != nil {
			_ = conn.Quit()
			return nil, fmt.Errorf("%w: as %s: %w", ErrLoginFailed, user, loginErr)
		}

		return conn, nil
	})
	if err != nil {
		c.logger.Error("failed to connect", zap.String("addr", addr), zap.Error(err))
		return err
	}

	c.conn = conn
	c.host = addr
	c.state = Connected

	c.logger.Info("connected", zap.String("addr", addr))
	return nil
}

// Close quits the session. Closing a disconnected client is a no-op.
func (c *Client) Close(ctx context.Context) error {
	if c.state == Disconnected {
		return nil
	}

	c.logger.Info("closing connection", zap.String("addr", c.host))

	conn := c.conn
	ok := c.adapter.Bool(ctx, func(context.Context) error {
		if err := conn.Quit(); err != nil {
			return fmt.Errorf("%w: QUIT: %w", ErrCommandFailed, err)
		}
		return nil
	})

	c.conn = nil
	c.state = Disconnected

	if !ok {
		err := c.errs.Last()
		c.logger.Warn("connection closed uncleanly", zap.Error(err))
		return err
	}

	c.logger.Info("connection closed", zap.String("addr", c.host))
	return nil
}

func (c *Client) ChangeDirectory(ctx context.Context, path string) error {
	return c.command(ctx, "CWD", path, func(conn Conn) error { return conn.ChangeDir(path) })
}

func (c *Client) MakeDirectory(ctx context.Context, path string) error {
	return c.command(ctx, "MKD", path, func(conn Conn) error { return conn.MakeDir(path) })
}

func (c *Client) RemoveDirectory(ctx context.Context, path string) error {
	return c.command(ctx, "RMD", path, func(conn Conn) error { return conn.RemoveDir(path) })
}

// RemoveDirectoryRecursive removes path together with everything below it.
func (c *Client) RemoveDirectoryRecursive(ctx context.Context, path string) error {
	return c.command(ctx, "RMD -r", path, func(conn Conn) error { return conn.RemoveDirRecur(path) })
}

// FetchText downloads remotePath into memory. The size is checked first and
// files over MaxTextSize are refused before any transfer starts.
func (c *Client) FetchText(ctx context.Context, remotePath string) (string, error) {
	if err := c.requireConnected("SIZE", remotePath); err != nil {
		return "", err
	}

	conn := c.conn
	size := c.adapter.Int(ctx, func(context.Context) (int64, error) {
		size, err := conn.FileSize(remotePath)
		if err != nil {
			return -1, fmt.Errorf("%w: %s: %w", ErrSizeQuery, remotePath, err)
		}
		return size, nil
	})
	if size < 0 {
		err := c.errs.Last()
		c.logger.Error("failed to query file size", zap.String("path", remotePath), zap.Error(err))
		return "", err
	}
	if size > MaxTextSize {
		return "", c.fail(fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, remotePath, size, MaxTextSize))
	}

	c.logger.Debug("fetching file", zap.String("path", remotePath), zap.Int64("size", size))

	contents, err := await.Wait(ctx, c.adapter, func(context.Context) (string, error) {
		resp, retrErr := conn.Retr(remotePath)
		if retrErr != nil {
			return "", fmt.Errorf("%w: RETR %s: %w", ErrTransferFailed, remotePath, retrErr)
		}
		defer resp.Close()

		var buf bytes.Buffer
		buf.Grow(int(min(size, preallocLimit)))
		if _, copyErr := io.Copy(&buf, io.LimitReader(resp, MaxTextSize+1)); copyErr != nil {
			return "", fmt.Errorf("%w: RETR %s: %w", ErrTransferFailed, remotePath, copyErr)
		}
		if int64(buf.Len()) > MaxTextSize {
			return "", fmt.Errorf("%w: %s grew past %d bytes during transfer", ErrTooLarge, remotePath, MaxTextSize)
		}

		return buf.String(), nil
	})
	if err != nil {
		c.logger.Error("failed to fetch file", zap.String("path", remotePath), zap.Error(err))
		return "", err
	}

	return contents, nil
}

// FetchToFile streams remotePath into localPath without buffering it in
// memory.
func (c *Client) FetchToFile(ctx context.Context, remotePath, localPath string) error {
	if err := c.requireConnected("RETR", remotePath); err != nil {
		return err
	}

	conn := c.conn
	_, err := await.Wait(ctx, c.adapter, func(context.Context) (int64, error) {
		if mkErr := c.fs.MkdirAll(filepath.Dir(localPath), 0o755); mkErr != nil {
			return 0, fmt.Errorf("failed to create %s: %w", filepath.Dir(localPath), mkErr)
		}

		resp, retrErr := conn.Retr(remotePath)
		if retrErr != nil {
			return 0, fmt.Errorf("%w: RETR %s: %w", ErrTransferFailed, remotePath, retrErr)
		}
		defer resp.Close()

		file, createErr := c.fs.Create(localPath)
		if createErr != nil {
			return 0, fmt.Errorf("failed to create %s: %w", localPath, createErr)
		}

		n, copyErr := io.Copy(file, resp)
		if closeErr := file.Close(); copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			return n, fmt.Errorf("%w: RETR %s: %w", ErrTransferFailed, remotePath, copyErr)
		}

		return n, nil
	})
	if err != nil {
		c.logger.Error("failed to download file",
			zap.String("path", remotePath),
			zap.String("local_path", localPath),
			zap.Error(err))
		return err
	}

	c.logger.Info("file downloaded",
		zap.String("path", remotePath),
		zap.String("local_path", localPath))
	return nil
}

func (c *Client) command(ctx context.Context, name, path string, fn func(Conn) error) error {
	if err := c.requireConnected(name, path); err != nil {
		return err
	}

	conn := c.conn
	_, err := await.Wait(ctx, c.adapter, func(context.Context) (struct{}, error) {
		if cmdErr := fn(conn); cmdErr != nil {
			return struct{}{}, fmt.Errorf("%w: %s %s: %w", ErrCommandFailed, name, path, cmdErr)
		}
		return struct{}{}, nil
	})
	if err != nil {
		c.logger.Error("remote command failed", zap.String("command", name), zap.String("path", path), zap.Error(err))
		return err
	}

	c.logger.Debug("remote command succeeded", zap.String("command", name), zap.String("path", path))
	return nil
}

func (c *Client) requireConnected(name, path string) error {
	if c.state != Connected {
		return c.fail(fmt.Errorf("%w: cannot run %s %s", ErrNotConnected, name, path))
	}

	return nil
}

func (c *Client) fail(err error) error {
	c.errs.Append(err)
	return err
}

func withDefaultPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}

	return net.JoinHostPort(host, DefaultPort)
}
