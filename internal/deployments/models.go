package deployments

import (
	"fmt"
	"net/url"
	"time"

	"github.com/apiarycd/ftpdeploy/internal/storage"
	"github.com/google/uuid"
)

const (
	prefix = "deployment:"

	prefixByID     = prefix + "id:"
	prefixByTarget = prefix + "target:"
)

// deploymentModel is the stored form of a deployment run.
type deploymentModel struct {
	storage.BaseEntity

	Target string `json:"target"`

	Revision string `json:"revision"`
	Branch   string `json:"branch"`
	Subject  string `json:"subject"`
	Mode     string `json:"mode"`
	Distance int    `json:"distance"`

	Status      Status     `json:"status"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Error       string     `json:"error"`

	PreviousDeployment *uuid.UUID `json:"previous_deployment"`
}

func newDeploymentModel(draft *DeploymentDraft) *deploymentModel {
	if draft == nil {
		return nil
	}

	return &deploymentModel{
		BaseEntity:         storage.NewBaseEntity(time.Now()),
		Target:             draft.Target,
		Revision:           draft.Revision,
		Branch:             draft.Branch,
		Subject:            draft.Subject,
		Mode:               draft.Mode,
		Distance:           draft.Distance,
		Status:             draft.Status,
		StartedAt:          draft.StartedAt,
		CompletedAt:        draft.CompletedAt,
		Error:              draft.Error,
		PreviousDeployment: draft.PreviousDeployment,
	}
}

func newDeploymentUpdateModel(source *deploymentModel, draft *DeploymentDraft) *deploymentModel {
	updated := newDeploymentModel(draft)
	updated.ID = source.ID
	updated.CreatedAt = source.CreatedAt
	updated.Touch(time.Now())

	return updated
}

func newDeployment(model *deploymentModel) *Deployment {
	if model == nil {
		return nil
	}

	return &Deployment{
		DeploymentDraft: DeploymentDraft{
			Target:             model.Target,
			Revision:           model.Revision,
			Branch:             model.Branch,
			Subject:            model.Subject,
			Mode:               model.Mode,
			Distance:           model.Distance,
			Status:             model.Status,
			StartedAt:          model.StartedAt,
			CompletedAt:        model.CompletedAt,
			Error:              model.Error,
			PreviousDeployment: model.PreviousDeployment,
		},
		ID:        model.ID,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func (m *deploymentModel) StorageKey() string {
	return keyByID(m.ID.String())
}

// StorageIndexes returns `deployment:target:<escaped target>:<created unix nano>:<id>`.
// The timestamp is zero padded so keys sort chronologically.
func (m *deploymentModel) StorageIndexes() []string {
	return []string{fmt.Sprintf("%s%020d:%s", targetPrefix(m.Target), m.CreatedAt.UnixNano(), m.ID)}
}

func (m *deploymentModel) MarshalStorage() ([]byte, error) {
	return storage.Marshal(m)
}

func (m *deploymentModel) UnmarshalStorage(data []byte) error {
	return storage.Unmarshal(data, m)
}

func keyByID(id string) string {
	return prefixByID + id
}

// targetPrefix escapes the target so that one target is never a prefix of
// another.
func targetPrefix(target string) string {
	return prefixByTarget + url.QueryEscape(target) + ":"
}
