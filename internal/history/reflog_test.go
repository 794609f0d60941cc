package history

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apiarycd/ftpdeploy/internal/errlog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	zero = "0000000000000000000000000000000000000000"
	h1   = "1111111111111111111111111111111111111111"
	h2   = "2222222222222222222222222222222222222222"
	h3   = "3333333333333333333333333333333333333333"
)

func reflogLine(prev, next, message string) string {
	return fmt.Sprintf("%s %s Jane Doe <jane@example.com> 1700000000 +0200\t%s", prev, next, message)
}

func writeReflog(t *testing.T, fs afero.Fs, lines ...string) {
	t.Helper()

	path := filepath.Join(".git", "logs", "HEAD")
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestParseReflogLine(t *testing.T) {
	entry, ok := ParseReflogLine(reflogLine(zero, h1, "commit (initial): init"))
	require.True(t, ok)

	assert.Equal(t, Revision(zero), entry.Previous)
	assert.Equal(t, Revision(h1), entry.Revision)
	assert.Equal(t, "Jane Doe", entry.Author)
	assert.Equal(t, "jane@example.com", entry.Email)
	assert.Equal(t, "commit (initial)", entry.Action)
	assert.Equal(t, "init", entry.Subject)
	assert.Equal(t, int64(1700000000), entry.Time.Unix())
	_, offset := entry.Time.Zone()
	assert.Equal(t, 7200, offset)

	entry, ok = ParseReflogLine(h1 + " " + h2 + " CI <> 1700000100 -0130\tcheckout: moving from main to release")
	require.True(t, ok)
	assert.Equal(t, "CI", entry.Author)
	assert.Equal(t, "checkout", entry.Action)
	assert.Equal(t, "moving from main to release", entry.Subject)
	_, offset = entry.Time.Zone()
	assert.Equal(t, -5400, offset)

	entry, ok = ParseReflogLine(reflogLine(h1, h2, "Fast-forward"))
	require.True(t, ok)
	assert.Empty(t, entry.Action)
	assert.Equal(t, "Fast-forward", entry.Subject)
}

func TestParseReflogLine_Malformed(t *testing.T) {
	for _, line := range []string{
		"",
		"garbage",
		h1 + " " + h2,
		strings.ToUpper(reflogLine(h1, h2, "commit: x")),
		"abc " + h2 + " Jane <j@x> 1700000000 +0000\tcommit: x",
		strings.Replace(reflogLine(h1, h2, "commit: x"), "\t", " ", 1),
	} {
		_, ok := ParseReflogLine(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestDecoder_LogUntilFindsTarget(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeReflog(t, fs,
		reflogLine(zero, h1, "commit (initial): init"),
		reflogLine(h1, h2, "commit: feature"),
		reflogLine(h2, h3, "commit: fix"),
	)

	d := NewDecoder(fs, ".git", errlog.New(), zaptest.NewLogger(t))
	res := d.LogUntil(Revision(h3))

	require.False(t, res.Failed)
	require.True(t, res.Found)
	assert.Equal(t, 3, res.Distance)
	assert.Equal(t, 3, res.Total)
	assert.Zero(t, res.Since())
	assert.Equal(t, "fix", res.History[res.Distance-1].Subject)

	match, ok := res.Match()
	require.True(t, ok)
	assert.Equal(t, Revision(h3), match.Revision)
}

func TestDecoder_LogUntilStopsAtFirstMatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeReflog(t, fs,
		reflogLine(zero, h1, "commit (initial): init"),
		"this line is not a reflog entry",
		reflogLine(h1, h2, "commit: feature"),
		"",
		reflogLine(h2, h3, "commit: fix"),
	)

	d := NewDecoder(fs, ".git", errlog.New(), zaptest.NewLogger(t))
	res := d.LogUntil(Revision(h2))

	require.True(t, res.Found)
	assert.Equal(t, 2, res.Distance)
	assert.Len(t, res.History, 2)
	assert.Equal(t, "feature", res.History[1].Subject)
	assert.Equal(t, 3, res.Total, "entries after the match are counted")
	assert.Equal(t, 1, res.Since())
}

func TestDecoder_LogUntilNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeReflog(t, fs,
		reflogLine(zero, h1, "commit (initial): init"),
		reflogLine(h1, h2, "commit: feature"),
	)

	d := NewDecoder(fs, ".git", errlog.New(), zaptest.NewLogger(t))
	res := d.LogUntil(Revision(h3))

	assert.False(t, res.Failed)
	assert.False(t, res.Found)
	assert.Zero(t, res.Distance)
	assert.Len(t, res.History, 2)
	assert.Equal(t, 2, res.Total)
	assert.Zero(t, res.Since())

	_, ok := res.Match()
	assert.False(t, ok)
}

func TestDecoder_LogUntilMissingReflog(t *testing.T) {
	log := errlog.New()
	d := NewDecoder(afero.NewMemMapFs(), ".git", log, zaptest.NewLogger(t))

	res := d.LogUntil(Revision(h1))

	assert.True(t, res.Failed)
	assert.False(t, res.Found)
	assert.True(t, log.Contains(ErrReflogNotFound))
}
