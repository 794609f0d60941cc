package deployments

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusRunning Status = "running" // Deployment is in progress
	StatusSuccess Status = "success" // Deployment completed successfully
	StatusFailed  Status = "failed"  // Deployment failed
)

type DeploymentDraft struct {
	// Target identifies the remote location, e.g. "ftp.example.com/www".
	Target string

	// Deployment Details
	Revision string // Git commit SHA
	Branch   string
	Subject  string // Commit subject line
	Mode     string // push or init
	// Distance counts local reflog entries recorded after the previously
	// deployed revision; zero when unknown.
	Distance int

	// Status
	Status      Status
	StartedAt   *time.Time
	CompletedAt *time.Time
	Error       string

	// PreviousDeployment is the last successful run against the same target.
	PreviousDeployment *uuid.UUID
}

type Deployment struct {
	DeploymentDraft

	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *DeploymentDraft) MarkRunning(startedAt time.Time) {
	d.Status = StatusRunning
	d.StartedAt = &startedAt
	d.CompletedAt = nil
}

func (d *Deployment) MarkDeployedAt(deployedAt time.Time) {
	d.Status = StatusSuccess
	d.CompletedAt = &deployedAt
	d.Error = ""
}

func (d *Deployment) MarkFailed(failedAt time.Time, err error) {
	d.Status = StatusFailed
	d.CompletedAt = &failedAt
	if err != nil {
		d.Error = err.Error()
	}
}

// Duration is zero until the deployment has both timestamps.
func (d *Deployment) Duration() time.Duration {
	if d.StartedAt == nil || d.CompletedAt == nil {
		return 0
	}

	return d.CompletedAt.Sub(*d.StartedAt)
}
