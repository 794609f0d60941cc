// Package errlog collects the failures recorded while a deployment runs so
// they can be reported in one place once the run is over.
package errlog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

// Log is an ordered, append-only list of errors. Entries are only removed by
// Pop or Drain.
type Log struct {
	mu      sync.Mutex
	entries []error
}

func New() *Log {
	return &Log{}
}

// Append records err. Nil errors are ignored.
func (l *Log) Append(err error) {
	if l == nil || err == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, err)
}

func (l *Log) Appendf(format string, args ...any) {
	l.Append(fmt.Errorf(format, args...))
}

func (l *Log) Len() int {
	if l == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

// Last returns the most recent entry without removing it.
func (l *Log) Last() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return nil
	}

	return l.entries[len(l.entries)-1]
}

// Pop removes and returns the most recent entry.
func (l *Log) Pop() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return nil
	}

	last := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]

	return last
}

// Drain returns every entry combined into a single error and clears the log.
func (l *Log) Drain() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	err := multierr.Combine(l.entries...)
	l.entries = nil

	return err
}

// Contains reports whether any recorded entry matches target.
func (l *Log) Contains(target error) bool {
	if l == nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if errors.Is(e, target) {
			return true
		}
	}

	return false
}

// String joins the entries with newlines.
func (l *Log) String() string {
	if l == nil {
		return ""
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lines := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		lines = append(lines, e.Error())
	}

	return strings.Join(lines, "\n")
}
