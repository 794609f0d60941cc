package deployments

import (
	"github.com/apiarycd/ftpdeploy/internal/errlog"
	"github.com/apiarycd/ftpdeploy/internal/history"
	"github.com/apiarycd/ftpdeploy/internal/metrics"
	"github.com/apiarycd/ftpdeploy/internal/notify"
	"github.com/apiarycd/ftpdeploy/internal/remote"
	"github.com/apiarycd/ftpdeploy/internal/syncer"
	"github.com/go-core-fx/logger"
	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"deployments",
		logger.WithNamedLogger("deployments"),
		fx.Provide(NewRepository, fx.Private),
		fx.Provide(NewService),
		fx.Provide(
			func(c *remote.Client) Remote { return c },
			func(m *notify.Messenger) Notifier { return m },
			func(s *syncer.Service) Syncer { return s },
			func(c *history.Commits) Commits { return c },
			func(m *metrics.Metrics) Recorder { return m },
			func(cfg Config, fs afero.Fs, errs *errlog.Log, logger *zap.Logger) History {
				return history.NewDecoder(fs, cfg.GitDir, errs, logger.Named("reflog"))
			},
			fx.Private,
		),
		fx.Provide(NewDriver),
	)
}
