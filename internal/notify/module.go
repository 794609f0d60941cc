package notify

import (
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"notify",
		logger.WithNamedLogger("notify"),
		fx.Provide(NewMessenger),
	)
}
