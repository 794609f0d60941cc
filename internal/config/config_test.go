package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) Config {
	t.Helper()

	cfg := Default()
	cfg.Deploy.SyncRoot = t.TempDir()
	cfg.FTP.Host = "ftp.example.com"
	cfg.FTP.Root = "www"
	cfg.FTP.User = "deploy"
	cfg.FTP.Password = "s3cret"
	cfg.Slack.Webhook = "T00000000/B00000000/XXXXXXXXXXXXXXXXXXXXXXXX"

	return cfg
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()

	v := validator.New()
	require.NoError(t, RegisterValidations(v))

	return v
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(newValidator(t), validConfig(t)))
}

func TestValidate_Missing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"sync root", func(c *Config) { c.Deploy.SyncRoot = "" }, "Deploy.SyncRoot"},
		{"host", func(c *Config) { c.FTP.Host = "" }, "FTP.Host"},
		{"root", func(c *Config) { c.FTP.Root = "" }, "FTP.Root"},
		{"user", func(c *Config) { c.FTP.User = "" }, "FTP.User"},
		{"password", func(c *Config) { c.FTP.Password = "" }, "FTP.Password"},
		{"webhook", func(c *Config) { c.Slack.Webhook = "" }, "Slack.Webhook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := Validate(newValidator(t), cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
			assert.Contains(t, err.Error(), ErrMissing.Error())
		})
	}
}

func TestValidate_Host(t *testing.T) {
	for _, host := range []string{"ftp.example.com", "10.0.0.1", "ftp-1.example.com:2121", "my_host"} {
		assert.NoError(t, ValidateHost(host), host)
	}

	for _, host := range []string{"ftp.example.com/www", "user@host", "host name", "host:port"} {
		assert.ErrorIs(t, ValidateHost(host), ErrInvalidHost, host)
	}

	cfg := validConfig(t)
	cfg.FTP.Host = "ftp.example.com;rm"
	err := Validate(newValidator(t), cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), ErrInvalidHost.Error())
}

func TestValidateSyncRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "public"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("x"), 0o600))

	assert.NoError(t, ValidateSyncRoot(filepath.Join(dir, "public")))
	assert.NoError(t, ValidateSyncRoot(filepath.Join(dir, "..public")), "only whole .. segments are rejected")

	for _, path := range []string{"..", "../site", "site/..", "a/../b"} {
		assert.ErrorIs(t, ValidateSyncRoot(path), ErrRelativePath, path)
	}

	assert.ErrorIs(t, ValidateSyncRoot(filepath.Join(dir, "missing")), ErrRootNotFound)
	assert.ErrorIs(t, ValidateSyncRoot(filepath.Join(dir, "file")), ErrRootNotFound)
}

func TestValidate_RelativeSyncRoot(t *testing.T) {
	cfg := validConfig(t)
	cfg.Deploy.SyncRoot = "../outside"

	err := Validate(newValidator(t), cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), ErrRelativePath.Error())
}

func TestApplyAndNormalize(t *testing.T) {
	cfg := Default()
	cfg.FTP.User = "from-file"

	clean := true
	cfg.Apply(Overrides{
		SyncRoot:    " public/ ",
		FTPHost:     "ftp.example.com",
		FTPRoot:     "/www/site/",
		Webhook:     " T00000000/B00000000/XXXXXXXXXXXXXXXXXXXXXXXX ",
		CleanRemote: &clean,
	})
	cfg.Normalize()

	assert.Equal(t, "public", cfg.Deploy.SyncRoot)
	assert.Equal(t, "www/site", cfg.FTP.Root)
	assert.Equal(t, "from-file", cfg.FTP.User)
	assert.Equal(t, "T00000000/B00000000/XXXXXXXXXXXXXXXXXXXXXXXX", cfg.Slack.Webhook)
	assert.True(t, cfg.Deploy.CleanRemote)
}

func TestOwnerRepo(t *testing.T) {
	cfg := Default()

	cfg.GitHub.Repository = "acme/site"
	assert.Equal(t, "acme", cfg.Owner())
	assert.Equal(t, "site", cfg.Repo())

	cfg.GitHub.Repository = "site"
	assert.Equal(t, "site", cfg.Owner())
	assert.Equal(t, "site", cfg.Repo())
}

func TestLoad_YAMLAndGitHubEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
ftp:
  host: ftp.example.com
  root: www
  user: deploy
slack:
  channel: "#deploys"
`), 0o600))

	t.Setenv("GITHUB_REPOSITORY", "acme/site")
	t.Setenv("GITHUB_RUN_ID", "42")

	cfg, err := Load(Overrides{ConfigPath: path, FTPPassword: "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, "ftp.example.com", cfg.FTP.Host)
	assert.Equal(t, "www", cfg.FTP.Root)
	assert.Equal(t, "s3cret", cfg.FTP.Password)
	assert.Equal(t, "#deploys", cfg.Slack.Channel)
	assert.Equal(t, ".git-ftp.log", cfg.Deploy.MarkerFile)
	assert.Equal(t, "acme/site", cfg.GitHub.Repository)
	assert.Equal(t, "42", cfg.GitHub.RunID)
}
