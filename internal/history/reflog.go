package history

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/apiarycd/ftpdeploy/internal/errlog"
	"github.com/apiarycd/ftpdeploy/internal/linereader"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	reflogLinePattern = regexp.MustCompile(
		`^([0-9a-f]{40}) ([0-9a-f]{40}) (.*?) ?<([^>]*)> (\d+) ([+-])(\d{2})(\d{2})\t(.*)$`,
	)
	reflogActionPattern = regexp.MustCompile(`^([a-z][a-z-]*(?: \([^)]*\))?): (.*)$`)
)

// Entry is one decoded reflog line.
type Entry struct {
	Previous Revision
	Revision Revision
	Author   string
	Email    string
	Time     time.Time
	Action   string // "commit", "commit (initial)", "checkout", ...
	Subject  string
}

// ParseReflogLine decodes a line of the form
//
//	<old> <new> <name> <<email>> <unix seconds> <+hhmm>\t<action>: <subject>
//
// and reports false for anything else.
func ParseReflogLine(line string) (Entry, bool) {
	m := reflogLinePattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}

	seconds, err := strconv.ParseInt(m[5], 10, 64)
	if err != nil {
		return Entry{}, false
	}

	hours, _ := strconv.Atoi(m[7])
	minutes, _ := strconv.Atoi(m[8])
	offset := hours*3600 + minutes*60
	if m[6] == "-" {
		offset = -offset
	}

	entry := Entry{
		Previous: Revision(m[1]),
		Revision: Revision(m[2]),
		Author:   m[3],
		Email:    m[4],
		Time:     time.Unix(seconds, 0).In(time.FixedZone(m[6]+m[7]+m[8], offset)),
		Subject:  m[9],
	}

	if a := reflogActionPattern.FindStringSubmatch(m[9]); a != nil {
		entry.Action = a[1]
		entry.Subject = a[2]
	}

	return entry, true
}

// Result describes how far a revision sits in the reflog.
type Result struct {
	// Failed is set when the reflog could not be read at all.
	Failed bool
	Found  bool
	// Distance is the number of entries read up to and including the match.
	Distance int
	// Total counts every well-formed entry in the reflog.
	Total   int
	History []Entry
}

// Since returns how many entries were recorded after the match; zero when
// nothing matched.
func (r Result) Since() int {
	if !r.Found {
		return 0
	}

	return r.Total - r.Distance
}

// Match returns the matched entry, if any.
func (r Result) Match() (Entry, bool) {
	if !r.Found || r.Distance < 1 || r.Distance > len(r.History) {
		return Entry{}, false
	}

	return r.History[r.Distance-1], true
}

// Decoder walks the HEAD reflog of one repository.
type Decoder struct {
	fs     afero.Fs
	gitDir string
	errs   *errlog.Log

	logger *zap.Logger
}

func NewDecoder(fs afero.Fs, gitDir string, errs *errlog.Log, logger *zap.Logger) *Decoder {
	return &Decoder{
		fs:     fs,
		gitDir: gitDir,
		errs:   errs,

		logger: logger,
	}
}

// Head resolves the current HEAD revision, recording any failure.
func (d *Decoder) Head() (Revision, error) {
	rev, err := ReadHead(d.fs, d.gitDir)
	if err != nil {
		d.errs.Append(err)
		return "", err
	}

	return rev, nil
}

// LogUntil reads the reflog oldest-first until target shows up as the new
// revision of an entry, then counts the remaining entries into Total.
// Malformed lines are skipped.
func (d *Decoder) LogUntil(target Revision) Result {
	path := filepath.Join(d.gitDir, "logs", "HEAD")
	result := Result{Failed: true}

	reader := linereader.New(d.fs, nil)
	if err := reader.Open(path); err != nil {
		d.errs.Append(fmt.Errorf("%w: %w", ErrReflogNotFound, err))
		d.logger.Warn("unable to open reflog", zap.String("path", path), zap.Error(err))
		return result
	}
	defer reader.Close()

	result.Failed = false

	skipped := 0
	for !reader.EOF() {
		line := reader.Read()
		if line == "" {
			continue
		}

		entry, ok := ParseReflogLine(line)
		if !ok {
			skipped++
			continue
		}

		result.Total++
		if result.Found {
			continue
		}

		result.History = append(result.History, entry)
		if entry.Revision == target {
			result.Found = true
			result.Distance = len(result.History)
		}
	}

	if err := reader.Err(); err != nil {
		d.errs.Append(err)
		result.Failed = true
	}

	d.logger.Debug("reflog scanned",
		zap.String("target", target.String()),
		zap.Bool("found", result.Found),
		zap.Int("distance", result.Distance),
		zap.Int("entries", result.Total),
		zap.Int("skipped", skipped))

	return result
}
