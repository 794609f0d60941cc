package metrics

import (
	"context"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"metrics",
		logger.WithNamedLogger("metrics"),
		fx.Provide(New),
		fx.Invoke(func(lc fx.Lifecycle, m *Metrics, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					if err := m.Push(ctx); err != nil {
						logger.Error("failed to push metrics", zap.Error(err))
					}
					return nil
				},
			})
		}),
	)
}
