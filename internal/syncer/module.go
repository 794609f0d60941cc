package syncer

import (
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"syncer",
		logger.WithNamedLogger("syncer"),
		fx.Provide(func() Runner { return ExecRunner{} }, fx.Private),
		fx.Provide(NewService),
	)
}
