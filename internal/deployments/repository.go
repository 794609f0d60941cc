package deployments

import (
	"context"
	"errors"
	"fmt"

	"github.com/apiarycd/ftpdeploy/pkg/badgerfx"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Repository is the BadgerDB journal of deployment runs.
type Repository struct {
	db       *badger.DB
	entities *badgerfx.Repository[*deploymentModel]
}

func NewRepository(db *badger.DB) *Repository {
	return &Repository{
		db: db,
		entities: badgerfx.NewRepository(
			keyByID,
			func() *deploymentModel { return new(deploymentModel) },
		),
	}
}

// Create creates a new deployment.
func (r *Repository) Create(_ context.Context, deployment *DeploymentDraft) (*Deployment, error) {
	model := newDeploymentModel(deployment)

	if err := r.db.Update(func(txn *badger.Txn) error {
		return r.entities.Write(txn, model)
	}); err != nil {
		return nil, fmt.Errorf("failed to create deployment: %w", err)
	}

	return newDeployment(model), nil
}

// GetByID retrieves a deployment by its ID.
func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*Deployment, error) {
	var deployment *deploymentModel

	err := r.db.View(func(txn *badger.Txn) error {
		found, err := r.getByID(txn, id)
		if err == nil {
			deployment = found
		}

		return err
	})

	return newDeployment(deployment), err
}

// GetLatestByTarget retrieves the newest deployment for a target accepted by
// predicate. A nil predicate accepts any deployment.
func (r *Repository) GetLatestByTarget(
	_ context.Context,
	target string,
	predicate func(*Deployment) bool,
) (*Deployment, error) {
	var latest *deploymentModel

	err := r.db.View(func(txn *badger.Txn) error {
		found, err := r.entities.ListByIndex(txn, targetPrefix(target), true, 1, func(m *deploymentModel) bool {
			return predicate == nil || predicate(newDeployment(m))
		})
		if err != nil {
			return err
		}

		if len(found) > 0 {
			latest = found[0]
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest deployment: %w", err)
	}

	if latest == nil {
		return nil, fmt.Errorf("%w for target: %s", ErrNotFound, target)
	}

	return newDeployment(latest), nil
}

// ListByTarget retrieves every deployment of a target, oldest first.
func (r *Repository) ListByTarget(_ context.Context, target string) ([]Deployment, error) {
	var deployments []Deployment

	err := r.db.View(func(txn *badger.Txn) error {
		found, err := r.entities.ListByIndex(txn, targetPrefix(target), false, 0, nil)
		if err != nil {
			return err
		}

		for _, m := range found {
			deployments = append(deployments, *newDeployment(m))
		}

		return nil
	})
	if err != nil {
		return deployments, fmt.Errorf("failed to list deployments: %w", err)
	}

	return deployments, nil
}

// Update updates an existing deployment.
func (r *Repository) Update(_ context.Context, id uuid.UUID, updater func(*Deployment) error) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		old, err := r.getByID(txn, id)
		if err != nil {
			return fmt.Errorf("failed to get deployment before update: %w", err)
		}

		deployment := newDeployment(old)

		if updErr := updater(deployment); updErr != nil {
			return fmt.Errorf("failed to update deployment: %w", updErr)
		}

		if deployment.Target != old.Target {
			return fmt.Errorf("%w: cannot change deployment target (old=%s new=%s)",
				ErrNotAllowed, old.Target, deployment.Target)
		}

		return r.entities.Write(txn, newDeploymentUpdateModel(old, &deployment.DeploymentDraft))
	})

	if err != nil {
		return fmt.Errorf("failed to update deployment: %w", err)
	}

	return nil
}

func (r *Repository) getByID(txn *badger.Txn, id uuid.UUID) (*deploymentModel, error) {
	model, err := r.entities.Read(txn, id.String())
	if errors.Is(err, badgerfx.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id.String())
	}
	if err != nil {
		return nil, err
	}

	return model, nil
}
