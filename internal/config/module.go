package config

import (
	"github.com/apiarycd/ftpdeploy/internal/deployments"
	"github.com/apiarycd/ftpdeploy/internal/metrics"
	"github.com/apiarycd/ftpdeploy/internal/notify"
	"github.com/apiarycd/ftpdeploy/internal/syncer"
	"github.com/apiarycd/ftpdeploy/pkg/badgerfx"
	"github.com/apiarycd/ftpdeploy/pkg/ftpfx"
	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(func(overrides Overrides, v *validator.Validate) (Config, error) {
			cfg, err := Load(overrides)
			if err != nil {
				return Config{}, err
			}

			if regErr := RegisterValidations(v); regErr != nil {
				return Config{}, regErr
			}

			if valErr := Validate(v, cfg); valErr != nil {
				return Config{}, valErr
			}

			return cfg, nil
		}),
		fx.Provide(func(cfg Config) ftpfx.Config {
			return ftpfx.Config{
				Timeout:     cfg.FTP.Timeout,
				DisableEPSV: cfg.FTP.DisableEPSV,
				TLS: ftpfx.TLSConfig{
					Mode:               ftpfx.TLSMode(cfg.FTP.TLS.Mode),
					CAFile:             cfg.FTP.TLS.CAFile,
					ServerName:         cfg.FTP.TLS.ServerName,
					InsecureSkipVerify: cfg.FTP.TLS.InsecureSkipVerify,
				},
			}
		}),
		fx.Provide(func(cfg Config) syncer.Config {
			return syncer.Config{
				Program: cfg.Sync.Program,
				Args:    cfg.Sync.Args,
				WorkDir: cfg.Sync.WorkDir,
			}
		}),
		fx.Provide(func(cfg Config) notify.Config {
			return notify.Config{
				Host:      cfg.Slack.Host,
				Webhook:   cfg.Slack.Webhook,
				Username:  cfg.Slack.Username,
				Channel:   cfg.Slack.Channel,
				IconEmoji: cfg.Slack.IconEmoji,
				Prefix:    cfg.Slack.Prefix,
				Timeout:   cfg.Slack.Timeout,
			}
		}),
		fx.Provide(func(cfg Config) metrics.Config {
			return metrics.Config{
				PushgatewayURL: cfg.Metrics.PushgatewayURL,
				Job:            cfg.Metrics.Job,
			}
		}),
		fx.Provide(func(cfg Config) deployments.Config {
			return deployments.Config{
				SyncRoot:    cfg.Deploy.SyncRoot,
				GitDir:      cfg.Deploy.GitDir,
				MarkerFile:  cfg.Deploy.MarkerFile,
				CleanRemote: cfg.Deploy.CleanRemote,

				Host:     cfg.FTP.Host,
				Root:     cfg.FTP.Root,
				User:     cfg.FTP.User,
				Password: cfg.FTP.Password,
				Scheme:   ftpfx.Config{TLS: ftpfx.TLSConfig{Mode: ftpfx.TLSMode(cfg.FTP.TLS.Mode)}}.Scheme(),

				Owner:     cfg.Owner(),
				Repo:      cfg.Repo(),
				Branch:    cfg.GitHub.Branch,
				RunID:     cfg.GitHub.RunID,
				RunNumber: cfg.GitHub.RunNumber,
			}
		}),
		fx.Provide(func(cfg Config) badgerfx.Config {
			return badgerfx.Config{
				Dir:      cfg.Storage.DataDir,
				InMemory: cfg.Storage.InMemory,
			}
		}),
	)
}
