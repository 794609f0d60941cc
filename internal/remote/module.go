package remote

import (
	"context"

	"github.com/apiarycd/ftpdeploy/pkg/ftpfx"
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newDialer(d *ftpfx.Dialer) Dialer {
	return DialerFunc(func(ctx context.Context, addr string) (Conn, error) {
		conn, err := d.Dial(ctx, addr)
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
}

func Module() fx.Option {
	return fx.Module(
		"remote",
		logger.WithNamedLogger("remote"),
		fx.Provide(newDialer, fx.Private),
		fx.Provide(NewClient),
		fx.Invoke(func(lc fx.Lifecycle, client *Client, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					if client.State() == Connected {
						logger.Warn("closing connection left open")
					}
					return client.Close(ctx)
				},
			})
		}),
	)
}
