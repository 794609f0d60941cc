package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const refPrefix = "ref: "

// ReadHead resolves the revision HEAD points at in gitDir. HEAD either holds
// a revision directly or redirects once through "ref: <path>".
func ReadHead(fs afero.Fs, gitDir string) (Revision, error) {
	raw, err := afero.ReadFile(fs, filepath.Join(gitDir, "HEAD"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: in %s", ErrHeadNotFound, gitDir)
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidHead, err)
	}

	ref := strings.TrimSpace(string(raw))
	if rev, parseErr := ParseRevision(ref); parseErr == nil {
		return rev, nil
	}

	if !strings.HasPrefix(ref, refPrefix) {
		return "", fmt.Errorf("%w: unexpected HEAD contents %q", ErrInvalidHead, ref)
	}

	name := strings.TrimSpace(strings.TrimPrefix(ref, refPrefix))
	if name == "" || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: bad ref %q", ErrInvalidHead, name)
	}

	target, err := afero.ReadFile(fs, filepath.Join(gitDir, filepath.FromSlash(name)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrRefNotFound, name)
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidHead, err)
	}

	rev, err := ParseRevision(string(target))
	if err != nil {
		return "", fmt.Errorf("%w: from %s: %w", ErrInvalidHead, name, err)
	}

	return rev, nil
}
