package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-core-fx/config"
)

type deployConfig struct {
	SyncRoot    string `koanf:"sync_root"    validate:"required,min=2,safepath"`
	GitDir      string `koanf:"git_dir"      validate:"required"`
	MarkerFile  string `koanf:"marker_file"  validate:"required"`
	CleanRemote bool   `koanf:"clean_remote"`
}

type ftpConfig struct {
	Host        string        `koanf:"host"         validate:"required,min=2,ftphost"`
	Root        string        `koanf:"root"         validate:"required,min=1"`
	User        string        `koanf:"user"         validate:"required"`
	Password    string        `koanf:"password"     validate:"required"`
	Timeout     time.Duration `koanf:"timeout"`
	DisableEPSV bool          `koanf:"disable_epsv"`
	TLS         ftpTLSConfig  `koanf:"tls"`
}

type ftpTLSConfig struct {
	Mode               string `koanf:"mode"                 validate:"omitempty,oneof=none explicit implicit"`
	CAFile             string `koanf:"ca_file"`
	ServerName         string `koanf:"server_name"`
	InsecureSkipVerify bool   `koanf:"insecure_skip_verify"`
}

type syncConfig struct {
	Program string   `koanf:"program" validate:"required"`
	Args    []string `koanf:"args"`
	WorkDir string   `koanf:"work_dir"`
}

type slackConfig struct {
	Host      string        `koanf:"host"       validate:"omitempty,url"`
	Webhook   string        `koanf:"webhook"    validate:"required,min=2"`
	Username  string        `koanf:"username"`
	Channel   string        `koanf:"channel"    validate:"omitempty,min=2"`
	IconEmoji string        `koanf:"icon_emoji" validate:"omitempty,min=3"`
	Prefix    string        `koanf:"prefix"`
	Timeout   time.Duration `koanf:"timeout"`
}

type githubConfig struct {
	Repository string `koanf:"repository"`
	Branch     string `koanf:"branch"`
	RunID      string `koanf:"run_id"`
	RunNumber  string `koanf:"run_number"`
}

type storageConfig struct {
	DataDir  string `koanf:"data_dir"`
	InMemory bool   `koanf:"in_memory"`
}

type metricsConfig struct {
	PushgatewayURL string `koanf:"pushgateway_url" validate:"omitempty,url"`
	Job            string `koanf:"job"`
}

type Config struct {
	Deploy  deployConfig  `koanf:"deploy"`
	FTP     ftpConfig     `koanf:"ftp"`
	Sync    syncConfig    `koanf:"sync"`
	Slack   slackConfig   `koanf:"slack"`
	GitHub  githubConfig  `koanf:"github"`
	Storage storageConfig `koanf:"storage"`
	Metrics metricsConfig `koanf:"metrics"`
}

func Default() Config {
	//nolint:exhaustruct,mnd //default values
	return Config{
		Deploy: deployConfig{
			GitDir:     ".git",
			MarkerFile: ".git-ftp.log",
		},

		FTP: ftpConfig{
			Timeout: 30 * time.Second,
			TLS: ftpTLSConfig{
				Mode: "none",
			},
		},

		Sync: syncConfig{
			Program: "git",
			Args:    []string{"ftp"},
			WorkDir: ".",
		},

		Slack: slackConfig{
			Host:    "https://hooks.slack.com/services",
			Timeout: 10 * time.Second,
		},

		Storage: storageConfig{
			DataDir: "./.ftpdeploy",
		},

		Metrics: metricsConfig{
			Job: "ftpdeploy",
		},
	}
}

// Overrides carries values given on the command line; empty fields keep the
// loaded configuration.
type Overrides struct {
	ConfigPath  string
	SyncRoot    string
	FTPHost     string
	FTPRoot     string
	FTPUser     string
	FTPPassword string
	Webhook     string
	CleanRemote *bool
}

func Load(overrides Overrides) (Config, error) {
	cfg := Default()

	options := []config.Option{}
	yamlPath := overrides.ConfigPath
	if yamlPath == "" {
		yamlPath = os.Getenv("CONFIG_PATH")
	}
	if yamlPath != "" {
		options = append(options, config.WithLocalYAML(yamlPath))
	}

	if err := config.Load(&cfg, options...); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.applyGitHubEnv()
	cfg.Apply(overrides)
	cfg.Normalize()

	return cfg, nil
}

// Apply copies every non-empty override onto cfg.
func (c *Config) Apply(o Overrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&c.Deploy.SyncRoot, o.SyncRoot)
	set(&c.FTP.Host, o.FTPHost)
	set(&c.FTP.Root, o.FTPRoot)
	set(&c.FTP.User, o.FTPUser)
	set(&c.FTP.Password, o.FTPPassword)
	set(&c.Slack.Webhook, o.Webhook)

	if o.CleanRemote != nil {
		c.Deploy.CleanRemote = *o.CleanRemote
	}
}

// Normalize trims the slashes callers tend to add around paths.
func (c *Config) Normalize() {
	c.Deploy.SyncRoot = strings.TrimRight(strings.TrimSpace(c.Deploy.SyncRoot), "/")
	c.FTP.Host = strings.TrimSpace(c.FTP.Host)
	c.FTP.Root = strings.Trim(strings.TrimSpace(c.FTP.Root), "/")
	c.Slack.Webhook = strings.TrimSpace(c.Slack.Webhook)
}

// applyGitHubEnv fills the GitHub run context from the variables Actions
// exports, unless configured explicitly.
func (c *Config) applyGitHubEnv() {
	fill := func(dst *string, name string) {
		if *dst == "" {
			*dst = os.Getenv(name)
		}
	}

	fill(&c.GitHub.Repository, "GITHUB_REPOSITORY")
	fill(&c.GitHub.Branch, "GITHUB_REF_NAME")
	fill(&c.GitHub.RunID, "GITHUB_RUN_ID")
	fill(&c.GitHub.RunNumber, "GITHUB_RUN_NUMBER")
}

// Owner and Repo split GitHub.Repository ("owner/repo").
func (c Config) Owner() string {
	owner, _, _ := strings.Cut(c.GitHub.Repository, "/")
	return owner
}

func (c Config) Repo() string {
	_, repo, found := strings.Cut(c.GitHub.Repository, "/")
	if !found {
		return c.GitHub.Repository
	}
	return repo
}
