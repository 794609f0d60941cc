package deployments

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apiarycd/ftpdeploy/internal/errlog"
	"github.com/apiarycd/ftpdeploy/internal/history"
	"github.com/apiarycd/ftpdeploy/internal/notify"
	"github.com/apiarycd/ftpdeploy/internal/syncer"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
)

type Remote interface {
	Connect(ctx context.Context, host, user, pass string) error
	Close(ctx context.Context) error
	ChangeDirectory(ctx context.Context, path string) error
	MakeDirectory(ctx context.Context, path string) error
	RemoveDirectoryRecursive(ctx context.Context, path string) error
	FetchText(ctx context.Context, path string) (string, error)
}

type Notifier interface {
	Notice(ctx context.Context, message string) error
	ErrorNotice(ctx context.Context, message, details string) error
}

type Syncer interface {
	Run(ctx context.Context, mode syncer.Mode, req syncer.Request) (syncer.Result, error)
}

type History interface {
	Head() (history.Revision, error)
	LogUntil(target history.Revision) history.Result
}

type Commits interface {
	HeadCommit(ctx context.Context, repoRoot string) (history.CommitInfo, error)
}

type Recorder interface {
	ObserveRun(mode, status string, elapsed time.Duration, success bool)
}

// Driver runs one deployment from start to finish.
type Driver struct {
	cfg Config

	remote   Remote
	notifier Notifier
	syncer   Syncer
	history  History
	commits  Commits
	journal  *Service
	recorder Recorder
	errs     *errlog.Log

	logger *zap.Logger
}

func NewDriver(
	cfg Config,
	remote Remote,
	notifier Notifier,
	runner Syncer,
	reflog History,
	commits Commits,
	journal *Service,
	recorder Recorder,
	errs *errlog.Log,
	logger *zap.Logger,
) *Driver {
	return &Driver{
		cfg: cfg,

		remote:   remote,
		notifier: notifier,
		syncer:   runner,
		history:  reflog,
		commits:  commits,
		journal:  journal,
		recorder: recorder,
		errs:     errs,

		logger: logger,
	}
}

// run carries the state of one Run call.
type run struct {
	started  time.Time
	id       *uuid.UUID
	head     history.Revision
	info     history.CommitInfo
	mode     syncer.Mode
	// since counts reflog entries recorded after the deployed revision.
	since    int
	found    bool
}

// Run deploys the sync root and returns the process exit code. Every failure
// ends with an error notice; notifier failures themselves are only logged.
func (d *Driver) Run(ctx context.Context) int {
	r := &run{started: time.Now(), mode: syncer.ModeInit}
	logger := d.logger.With(zap.String("target", d.cfg.Target()))

	logger.Info("deploying",
		zap.String("url", fmt.Sprintf("%s://%s:passwd@%s/%s", d.cfg.Scheme, d.cfg.User, d.cfg.Host, d.cfg.Root)),
		zap.String("sync_root", d.cfg.SyncRoot))

	head, err := d.history.Head()
	if err != nil {
		return d.fail(ctx, r, fmt.Errorf("%w: %w", ErrHeadUnknown, err), "")
	}
	r.head = head
	logger.Info("current git HEAD", zap.String("revision", head.String()))

	r.info, err = d.commits.HeadCommit(ctx, filepath.Dir(d.cfg.GitDir))
	if err != nil {
		logger.Warn("unable to describe HEAD commit", zap.Error(err))
		r.info = history.CommitInfo{Revision: head}
	}

	r.id = d.begin(ctx, r)
	d.notice(ctx, d.startMessage(r))

	defer func() {
		if closeErr := d.remote.Close(ctx); closeErr != nil {
			logger.Warn("unable to close FTP connection", zap.Error(closeErr))
			d.errs.Pop()
		}
	}()

	if connErr := d.remote.Connect(ctx, d.cfg.Host, d.cfg.User, d.cfg.Password); connErr != nil {
		return d.fail(ctx, r, connErr, "")
	}

	if prepErr := d.prepareRoot(ctx); prepErr != nil {
		return d.fail(ctx, r, prepErr, "")
	}

	d.resolveMode(ctx, r)

	logger.Info("closing FTP connection")
	if closeErr := d.remote.Close(ctx); closeErr != nil {
		logger.Warn("unable to close FTP connection", zap.Error(closeErr))
		d.errs.Pop()
	}

	result, err := d.syncer.Run(ctx, r.mode, syncer.Request{
		SyncRoot:   d.cfg.SyncRoot,
		Scheme:     d.cfg.Scheme,
		Host:       d.cfg.Host,
		RemoteRoot: d.cfg.Root,
		User:       d.cfg.User,
		Password:   d.cfg.Password,
	})
	if result.Mode != "" {
		r.mode = result.Mode
	}
	if err != nil {
		return d.fail(ctx, r, fmt.Errorf("%w: %w", ErrSyncFailed, err), result.Output())
	}

	d.notice(ctx, d.successMessage(r, result))
	d.finish(ctx, r, nil)

	logger.Info("deployment finished", zap.String("mode", string(r.mode)), zap.Duration("elapsed", time.Since(r.started)))
	return ExitSuccess
}

// prepareRoot optionally recreates the remote root, then enters it, creating
// it when missing.
func (d *Driver) prepareRoot(ctx context.Context) error {
	root := d.cfg.Root

	if d.cfg.CleanRemote {
		d.logger.Info("removing remote directory", zap.String("path", root))
		if err := d.remote.RemoveDirectoryRecursive(ctx, root); err != nil {
			d.logger.Warn("unable to remove remote directory", zap.Error(err))
			d.errs.Pop()
		}

		if err := d.remote.MakeDirectory(ctx, root); err != nil {
			return fmt.Errorf("%w: %w", ErrRemoteClean, err)
		}
	}

	if err := d.remote.ChangeDirectory(ctx, root); err == nil {
		return nil
	}
	d.errs.Pop()

	d.logger.Info("remote directory missing, creating it", zap.String("path", root))
	if err := d.remote.MakeDirectory(ctx, root); err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteRoot, err)
	}

	if err := d.remote.ChangeDirectory(ctx, root); err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteRoot, err)
	}

	return nil
}

// resolveMode reads the remote marker. A readable marker means an
// incremental push; anything else falls back to an initial upload.
func (d *Driver) resolveMode(ctx context.Context, r *run) {
	contents, err := d.remote.FetchText(ctx, d.cfg.MarkerFile)
	if err != nil {
		d.logger.Info("no deployed revision on remote", zap.Error(err))
		d.errs.Pop()
		return
	}

	deployed, err := history.ParseRevision(contents)
	if err != nil {
		d.logger.Warn("inconsistent deployed revision, ignoring it",
			zap.Int("length", len(contents)), zap.Error(err))
		return
	}

	r.mode = syncer.ModePush
	d.logger.Info("deployed revision", zap.String("revision", deployed.String()))

	hist := d.history.LogUntil(deployed)
	switch {
	case hist.Failed:
		d.logger.Warn("unable to read local history")
		d.errs.Pop()
	case hist.Found:
		r.found = true
		r.since = hist.Since()
		entry, _ := hist.Match()
		d.logger.Info("deployed revision found in history",
			zap.Int("position", hist.Distance),
			zap.Int("since", r.since),
			zap.String("subject", entry.Subject))
	default:
		d.logger.Warn("deployed revision is not in this HEAD's history")
	}
}

func (d *Driver) fail(ctx context.Context, r *run, err error, output string) int {
	d.logger.Error("deployment failed", zap.Error(err))

	// Recorded entries usually reappear wrapped inside err.
	lines := []string{err.Error()}
	for _, recorded := range multierr.Errors(d.errs.Drain()) {
		if !strings.Contains(lines[0], recorded.Error()) {
			lines = append(lines, recorded.Error())
		}
	}
	details := strings.Join(lines, "\n")
	if output != "" {
		details += "\n\n" + output
	}

	if noticeErr := d.notifier.ErrorNotice(ctx, d.failureMessage(r), details); noticeErr != nil {
		d.logger.Error("failed to deliver error notice", zap.Error(noticeErr))
		d.errs.Pop()
	}

	d.finish(ctx, r, err)
	return ExitFailure
}

func (d *Driver) notice(ctx context.Context, message string) {
	if err := d.notifier.Notice(ctx, message); err != nil {
		d.logger.Error("failed to deliver notice", zap.Error(err))
		d.errs.Pop()
	}
}

func (d *Driver) begin(ctx context.Context, r *run) *uuid.UUID {
	deployment, err := d.journal.Begin(ctx, DeploymentDraft{
		Target:   d.cfg.Target(),
		Revision: r.head.String(),
		Branch:   d.branch(r),
		Subject:  r.info.Subject,
		Mode:     string(r.mode),
	})
	if err != nil {
		d.logger.Error("failed to journal deployment", zap.Error(fmt.Errorf("%w: %w", ErrJournalFailed, err)))
		return nil
	}

	return &deployment.ID
}

func (d *Driver) finish(ctx context.Context, r *run, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailed
	}
	d.recorder.ObserveRun(string(r.mode), string(status), time.Since(r.started), err == nil)

	if r.id == nil {
		return
	}

	if _, finErr := d.journal.Finish(ctx, *r.id, Outcome{
		Mode:     string(r.mode),
		Distance: r.since,
		Err:      err,
	}); finErr != nil {
		d.logger.Error("failed to journal deployment", zap.Error(fmt.Errorf("%w: %w", ErrJournalFailed, finErr)))
	}
}

func (d *Driver) branch(r *run) string {
	if d.cfg.Branch != "" {
		return d.cfg.Branch
	}

	return r.info.Branch
}

// subject describes what is deployed, linking to GitHub when the repository
// is known.
func (d *Driver) subject(r *run) string {
	var b strings.Builder

	if d.cfg.Owner != "" && r.head != "" {
		b.WriteString("commit " + notify.CommitLink(d.cfg.Owner, d.cfg.Repo, r.head.String()))
	} else {
		b.WriteString("commit " + r.head.Short())
	}

	if branch := d.branch(r); branch != "" {
		if d.cfg.Owner != "" {
			b.WriteString(" of " + notify.BranchLink(d.cfg.Owner, d.cfg.Repo, branch))
		} else {
			b.WriteString(" of branch " + branch)
		}
	}

	if d.cfg.Repo != "" {
		b.WriteString(" from " + notify.RepoLink(d.cfg.Owner, d.cfg.Repo))
	}

	if r.info.Subject != "" {
		b.WriteString(" (" + r.info.Subject + ")")
	}

	return b.String()
}

func (d *Driver) runLink() string {
	if d.cfg.Owner == "" || d.cfg.RunID == "" {
		return ""
	}

	return " " + notify.DeployLink(d.cfg.Owner, d.cfg.Repo, d.cfg.RunID, d.cfg.RunNumber)
}

func (d *Driver) startMessage(r *run) string {
	return "Deploying " + d.subject(r) + " to " + d.cfg.Target() + d.runLink()
}

func (d *Driver) successMessage(r *run, result syncer.Result) string {
	msg := "Deployed " + d.subject(r) + " to " + d.cfg.Target()

	switch {
	case result.Recovered:
		msg += " (remote was not initialized, uploaded everything)"
	case result.Mode == syncer.ModeInit:
		msg += " (initial upload)"
	case r.found && r.since == 1:
		msg += " (1 reflog entry since last deployment)"
	case r.found:
		msg += " (" + strconv.Itoa(r.since) + " reflog entries since last deployment)"
	}

	return msg + d.runLink()
}

func (d *Driver) failureMessage(r *run) string {
	if r.head == "" {
		return "Deployment to " + d.cfg.Target() + " failed" + d.runLink()
	}

	return "Deployment of " + d.subject(r) + " to " + d.cfg.Target() + " failed" + d.runLink()
}
