package internal

import (
	"context"
	"os"

	"github.com/apiarycd/ftpdeploy/internal/config"
	"github.com/apiarycd/ftpdeploy/internal/deployments"
	"github.com/apiarycd/ftpdeploy/internal/errlog"
	"github.com/apiarycd/ftpdeploy/internal/history"
	"github.com/apiarycd/ftpdeploy/internal/metrics"
	"github.com/apiarycd/ftpdeploy/internal/notify"
	"github.com/apiarycd/ftpdeploy/internal/remote"
	"github.com/apiarycd/ftpdeploy/internal/syncer"
	"github.com/apiarycd/ftpdeploy/pkg/badgerfx"
	"github.com/apiarycd/ftpdeploy/pkg/ftpfx"
	"github.com/capcom6/go-infra-fx/validator"
	"github.com/go-core-fx/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const usage = "ftpdeploy [sync-root] [ftp-host] [ftp-root] [ftp-user] [ftp-pass] [webhook]"

func Run() {
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewCommand builds the root command. Positional arguments override the
// matching configuration values.
func NewCommand() *cobra.Command {
	var (
		overrides config.Overrides
		clean     bool
	)

	cmd := &cobra.Command{
		Use:   usage,
		Short: "Deploy a git working tree to an FTP host and report to Slack",
		Long: "Publishes the sync root to the FTP host using git-ftp. The revision stored " +
			"on the remote decides between an incremental push and an initial upload.",
		Args:         cobra.MaximumNArgs(6), //nolint:mnd //positional arguments
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyArgs(&overrides, args)
			if cmd.Flags().Changed("clean") {
				overrides.CleanRemote = &clean
			}

			newApp(overrides).Run()
			return nil
		},
	}

	cmd.Flags().StringVarP(&overrides.ConfigPath, "config", "c", "", "path to a YAML config file (default $CONFIG_PATH)")
	cmd.Flags().BoolVar(&clean, "clean", false, "remove and recreate the remote root before deploying")

	return cmd
}

func applyArgs(overrides *config.Overrides, args []string) {
	positional := []*string{
		&overrides.SyncRoot,
		&overrides.FTPHost,
		&overrides.FTPRoot,
		&overrides.FTPUser,
		&overrides.FTPPassword,
		&overrides.Webhook,
	}

	for i, arg := range args {
		if i < len(positional) {
			*positional[i] = arg
		}
	}
}

func newApp(overrides config.Overrides) *fx.App {
	return fx.New(
		// CORE MODULES
		logger.Module(),
		logger.WithFxDefaultLogger(),
		badgerfx.Module(),
		ftpfx.Module(),
		validator.Module,
		fx.Provide(afero.NewOsFs, errlog.New),
		//
		// APP MODULES
		fx.Supply(overrides),
		config.Module(),
		metrics.Module(),
		//
		// BUSINESS MODULES
		remote.Module(),
		history.Module(),
		notify.Module(),
		syncer.Module(),
		deployments.Module(),
		//
		// LIFECYCLE MANAGEMENT
		fx.Invoke(func(lc fx.Lifecycle, shutdowner fx.Shutdowner, driver *deployments.Driver, logger *zap.Logger) {
			ctx, cancel := context.WithCancel(context.Background())

			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					logger.Info("🚀 ftpdeploy starting up")
					go func() {
						code := driver.Run(ctx)
						if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
							logger.Error("failed to shut down", zap.Error(err))
						}
					}()
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					logger.Info("🛑 ftpdeploy shutting down")
					return nil
				},
			})
		}),
	)
}
