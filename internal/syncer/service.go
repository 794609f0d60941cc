// Package syncer drives the external file-sync tool that publishes the sync
// root to the remote host.
package syncer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const masked = "********"

type Service struct {
	cfg    Config
	runner Runner

	logger *zap.Logger
}

func NewService(cfg Config, runner Runner, logger *zap.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.Program == "" {
		cfg.Program = defaults.Program
		if cfg.Args == nil {
			cfg.Args = defaults.Args
		}
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = defaults.WorkDir
	}

	return &Service{
		cfg:    cfg,
		runner: runner,

		logger: logger,
	}
}

// Execute runs the tool once in the given mode.
func (s *Service) Execute(ctx context.Context, mode Mode, req Request) (Result, error) {
	if mode != ModePush && mode != ModeInit {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	args := s.args(mode, req)
	logger := s.logger.With(zap.String("mode", string(mode)))
	logger.Info("running sync tool",
		zap.String("program", s.cfg.Program),
		zap.Strings("args", maskArgs(args, req.Password)))

	started := time.Now()
	stdout, stderr, code, err := s.runner.Run(ctx, s.cfg.WorkDir, s.cfg.Program, args...)
	result := Result{
		Mode:     mode,
		ExitCode: code,
		Stdout:   stdout,
		Stderr:   stderr,
		Duration: time.Since(started),
	}
	if err != nil {
		logger.Error("failed to start sync tool", zap.Error(err))
		return result, err
	}

	if !result.Succeeded() {
		logger.Error("sync tool failed",
			zap.Int("exit_code", code),
			zap.Duration("duration", result.Duration))
		return result, fmt.Errorf("%w: %s exited with status %d", ErrSyncFailed, mode, code)
	}

	logger.Info("sync tool finished", zap.Duration("duration", result.Duration))
	return result, nil
}

// Run executes mode and, when a push fails because the remote has never been
// initialized, retries exactly once as an init.
func (s *Service) Run(ctx context.Context, mode Mode, req Request) (Result, error) {
	result, err := s.Execute(ctx, mode, req)
	if err == nil || mode != ModePush || !NotInitialized(result) {
		return result, err
	}

	s.logger.Warn("remote is not initialized, retrying with init")

	retried, err := s.Execute(ctx, ModeInit, req)
	retried.Recovered = true
	if err != nil {
		retried.Stdout = joinOutput(result.Stdout, retried.Stdout)
		retried.Stderr = joinOutput(result.Stderr, retried.Stderr)
	}

	return retried, err
}

func (s *Service) args(mode Mode, req Request) []string {
	args := slices.Clone(s.cfg.Args)
	args = append(args, string(mode))

	if req.SyncRoot != "" {
		args = append(args, "--syncroot", req.SyncRoot)
	}
	if req.User != "" {
		args = append(args, "--user", req.User)
	}
	if req.Password != "" {
		args = append(args, "--passwd", req.Password)
	}

	return append(args, req.URL())
}

func maskArgs(args []string, secret string) []string {
	if secret == "" {
		return args
	}

	return lo.Map(args, func(arg string, _ int) string {
		return strings.ReplaceAll(arg, secret, masked)
	})
}

func joinOutput(first, second string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + "\n" + strings.TrimSpace(second))
}
