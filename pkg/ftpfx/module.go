package ftpfx

import (
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"ftpfx",
		logger.WithNamedLogger("ftpfx"),
		fx.Provide(NewDialer),
		fx.Invoke(func(d *Dialer, logger *zap.Logger) {
			logger.Debug("ftp dialer ready",
				zap.String("scheme", d.Config().Scheme()),
				zap.Duration("timeout", d.Config().Timeout))
		}),
	)
}
