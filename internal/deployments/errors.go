package deployments

import "errors"

var (
	ErrNotFound      = errors.New("deployment not found")
	ErrNotAllowed    = errors.New("operation not allowed")
	ErrHeadUnknown   = errors.New("unable to fetch git HEAD")
	ErrRemoteRoot    = errors.New("unable to change to remote deploy directory")
	ErrRemoteClean   = errors.New("unable to clean remote deploy directory")
	ErrSyncFailed    = errors.New("remote sync failed")
	ErrJournalFailed = errors.New("unable to record deployment")
)
