package syncer

import (
	"regexp"
	"strings"
	"time"
)

type Mode string

const (
	ModePush Mode = "push"
	ModeInit Mode = "init"
)

// notInitializedPattern matches git-ftp's complaint about a remote without
// a deployment marker.
var notInitializedPattern = regexp.MustCompile(`(?i)(could not get last commit|git[ -]ftp init)`)

type Request struct {
	SyncRoot   string
	Scheme     string // ftp, ftpes or ftps
	Host       string
	RemoteRoot string
	User       string
	Password   string
}

// URL returns the scheme-qualified remote location.
func (r Request) URL() string {
	scheme := r.Scheme
	if scheme == "" {
		scheme = "ftp"
	}

	return scheme + "://" + r.Host + "/" + strings.Trim(r.RemoteRoot, "/")
}

type Result struct {
	Mode     Mode
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	// Recovered is set when a failed push was retried as an init.
	Recovered bool
}

func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Output joins stdout and stderr for reports.
func (r Result) Output() string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(r.Stdout); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(r.Stderr); s != "" {
		parts = append(parts, s)
	}

	return strings.Join(parts, "\n")
}

// NotInitialized reports whether a failed run asks for an initial push.
func NotInitialized(r Result) bool {
	if r.Succeeded() {
		return false
	}

	return notInitializedPattern.MatchString(r.Stdout) || notInitializedPattern.MatchString(r.Stderr)
}
