// Package linereader reads a file as a forward-only sequence of lines.
package linereader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apiarycd/ftpdeploy/internal/errlog"
	"github.com/spf13/afero"
)

const (
	chunkSize      = 4096
	initialScratch = 128
)

// Reader yields the lines of one file at a time. Read returns "" both for an
// empty line and when there is nothing left, so callers check EOF to tell the
// two apart.
type Reader struct {
	fs  afero.Fs
	log *errlog.Log

	path    string
	file    afero.File
	buf     *bufio.Reader
	scratch []byte
	eof     bool
	err     error
}

// New creates a Reader over fs. log may be nil.
func New(fs afero.Fs, log *errlog.Log) *Reader {
	return &Reader{
		fs:  fs,
		log: log,
	}
}

// Open positions the reader at the start of path. An already open file is
// closed first.
func (r *Reader) Open(path string) error {
	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
	}

	r.eof = false
	r.err = nil
	r.buf = nil
	r.scratch = r.scratch[:0]

	info, err := r.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r.fail(fmt.Errorf("%w: %s", ErrNotFound, path))
		}
		return r.fail(fmt.Errorf("failed to stat %s: %w", path, err))
	}
	if info.IsDir() {
		return r.fail(fmt.Errorf("%w: %s", ErrIsDirectory, path))
	}

	file, err := r.fs.Open(path)
	if err != nil {
		return r.fail(fmt.Errorf("failed to open %s: %w", path, err))
	}

	r.path = path
	r.file = file
	r.buf = bufio.NewReaderSize(file, chunkSize)

	return nil
}

// Read returns the next line without its line terminator.
func (r *Reader) Read() string {
	if r.file == nil {
		r.log.Append(ErrNotOpen)
		return ""
	}
	if r.eof {
		return ""
	}

	r.scratch = r.scratch[:0]
	for {
		chunk, err := r.buf.ReadSlice('\n')
		r.grow(chunk)

		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		r.eof = true
		if !errors.Is(err, io.EOF) {
			_ = r.fail(fmt.Errorf("failed to read %s: %w", r.path, err))
		}
		break
	}

	// Look ahead so EOF flips right after the last line is handed out.
	if !r.eof {
		if _, err := r.buf.Peek(1); err != nil {
			r.eof = true
			if !errors.Is(err, io.EOF) {
				_ = r.fail(fmt.Errorf("failed to read %s: %w", r.path, err))
			}
		}
	}

	return string(trimEOL(r.scratch))
}

// EOF reports whether the whole stream has been consumed.
func (r *Reader) EOF() bool {
	return r.eof
}

// Err returns the first error met while opening or reading.
func (r *Reader) Err() error {
	return r.err
}

// Close releases the open file.
func (r *Reader) Close() error {
	if r.file == nil {
		return r.fail(ErrNotOpen)
	}

	err := r.file.Close()
	r.file = nil
	r.buf = nil
	if err != nil {
		return r.fail(fmt.Errorf("failed to close %s: %w", r.path, err))
	}

	return nil
}

// grow appends p to the scratch buffer, doubling its capacity as needed.
func (r *Reader) grow(p []byte) {
	need := len(r.scratch) + len(p)
	if need > cap(r.scratch) {
		size := max(cap(r.scratch), initialScratch)
		for size < need {
			size *= 2
		}

		grown := make([]byte, len(r.scratch), size)
		copy(grown, r.scratch)
		r.scratch = grown
	}

	r.scratch = append(r.scratch, p...)
}

func (r *Reader) fail(err error) error {
	if r.err == nil {
		r.err = err
	}
	r.log.Append(err)

	return err
}

func trimEOL(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}

	return line
}
