package deployments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome is what a finished run reports back to the journal.
type Outcome struct {
	Mode     string
	Distance int
	Err      error
}

// Service keeps the deployment journal.
type Service struct {
	deployments *Repository

	logger *zap.Logger
}

func NewService(deployments *Repository, logger *zap.Logger) *Service {
	return &Service{
		deployments: deployments,

		logger: logger,
	}
}

// Begin records a running deployment linked to the last successful one for
// the same target.
func (s *Service) Begin(ctx context.Context, draft DeploymentDraft) (*Deployment, error) {
	logger := s.logger.With(zap.String("target", draft.Target))

	latest, err := s.LatestSuccessful(ctx, draft.Target)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if latest != nil {
		draft.PreviousDeployment = &latest.ID
	}

	draft.MarkRunning(time.Now())

	deployment, err := s.deployments.Create(ctx, &draft)
	if err != nil {
		logger.Error("failed to create deployment", zap.Error(err))
		return nil, err
	}

	logger.Info("deployment started", zap.String("id", deployment.ID.String()))
	return deployment, nil
}

// Finish marks the deployment succeeded or failed according to outcome.
func (s *Service) Finish(ctx context.Context, id uuid.UUID, outcome Outcome) (*Deployment, error) {
	logger := s.logger.With(zap.String("id", id.String()))

	now := time.Now()
	err := s.deployments.Update(ctx, id, func(d *Deployment) error {
		if d.Status != StatusRunning {
			return fmt.Errorf("%w: deployment is %s", ErrNotAllowed, d.Status)
		}

		if outcome.Mode != "" {
			d.Mode = outcome.Mode
		}
		d.Distance = outcome.Distance

		if outcome.Err != nil {
			d.MarkFailed(now, outcome.Err)
		} else {
			d.MarkDeployedAt(now)
		}

		return nil
	})
	if err != nil {
		logger.Error("failed to finish deployment", zap.Error(err))
		return nil, err
	}

	deployment, err := s.deployments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.Info("deployment finished", zap.String("status", string(deployment.Status)))
	return deployment, nil
}

// LatestSuccessful returns the newest successful deployment of target.
func (s *Service) LatestSuccessful(ctx context.Context, target string) (*Deployment, error) {
	return s.deployments.GetLatestByTarget(
		ctx,
		target,
		func(d *Deployment) bool { return d.Status == StatusSuccess },
	)
}

// ListByTarget retrieves all deployments of target, oldest first.
func (s *Service) ListByTarget(ctx context.Context, target string) ([]Deployment, error) {
	s.logger.Debug("listing deployments", zap.String("target", target))

	deployments, err := s.deployments.ListByTarget(ctx, target)
	if err != nil {
		s.logger.Error("failed to list deployments", zap.Error(err))
		return nil, err
	}

	return deployments, nil
}
