package history

import (
	"fmt"
	"regexp"
	"strings"
)

var revisionPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// Revision is a full, lowercase, 40 hex character commit id.
type Revision string

// ParseRevision validates s after trimming surrounding whitespace.
func ParseRevision(s string) (Revision, error) {
	s = strings.TrimSpace(s)
	if !revisionPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRevision, s)
	}

	return Revision(s), nil
}

func (r Revision) String() string {
	return string(r)
}

// Short returns the abbreviated form used in messages.
func (r Revision) Short() string {
	if len(r) < 7 {
		return string(r)
	}

	return string(r[:7])
}
