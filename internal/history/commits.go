package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"go.uber.org/zap"
)

// CommitInfo describes the commit HEAD points at.
type CommitInfo struct {
	Revision Revision
	Branch   string // empty when HEAD is detached
	Subject  string // first line of the message
	Author   string
	When     time.Time
}

type Commits struct {
	logger *zap.Logger
}

func NewCommits(logger *zap.Logger) *Commits {
	return &Commits{
		logger: logger,
	}
}

// HeadCommit opens the repository at repoRoot and describes its HEAD commit.
func (c *Commits) HeadCommit(_ context.Context, repoRoot string) (CommitInfo, error) {
	c.logger.Debug("getting HEAD commit", zap.String("path", repoRoot))

	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		c.logger.Error("failed to open repository", zap.Error(err))
		return CommitInfo{}, fmt.Errorf("%w: %w", ErrRepository, err)
	}

	head, err := repo.Head()
	if err != nil {
		c.logger.Error("failed to get HEAD", zap.Error(err))
		return CommitInfo{}, fmt.Errorf("%w: %w", ErrInvalidHead, err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		c.logger.Error("failed to get commit object", zap.Error(err))
		return CommitInfo{}, fmt.Errorf("%w: %w", ErrInvalidHead, err)
	}

	rev, err := ParseRevision(commit.Hash.String())
	if err != nil {
		return CommitInfo{}, err
	}

	info := CommitInfo{
		Revision: rev,
		Subject:  subject(commit.Message),
		Author:   commit.Author.Name,
		When:     commit.Author.When,
	}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	c.logger.Debug("HEAD commit retrieved",
		zap.String("hash", info.Revision.String()),
		zap.String("branch", info.Branch))

	return info, nil
}

func subject(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return strings.TrimSpace(line)
}
