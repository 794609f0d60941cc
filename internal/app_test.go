package internal

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/apiarycd/ftpdeploy/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyArgs(t *testing.T) {
	var overrides config.Overrides

	applyArgs(&overrides, []string{"public", "ftp.example.com", "www", "deploy", "s3cret", "T00000000/B00000000/XXXXXXXXXXXXXXXXXXXXXXXX"})

	assert.Equal(t, config.Overrides{
		SyncRoot:    "public",
		FTPHost:     "ftp.example.com",
		FTPRoot:     "www",
		FTPUser:     "deploy",
		FTPPassword: "s3cret",
		Webhook:     "T00000000/B00000000/XXXXXXXXXXXXXXXXXXXXXXXX",
	}, overrides)
}

func TestApplyArgs_Partial(t *testing.T) {
	overrides := config.Overrides{FTPUser: "from-config"}

	applyArgs(&overrides, []string{"public", "ftp.example.com"})

	assert.Equal(t, "public", overrides.SyncRoot)
	assert.Equal(t, "ftp.example.com", overrides.FTPHost)
	assert.Equal(t, "from-config", overrides.FTPUser)
}

func TestNewCommand_RejectsExtraArgs(t *testing.T) {
	cmd := NewCommand()
	cmd.SetArgs([]string{"1", "2", "3", "4", "5", "6", "7"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	require.Error(t, cmd.Execute())
}

func TestNewCommand_Flags(t *testing.T) {
	cmd := NewCommand()

	require.NotNil(t, cmd.Flags().Lookup("config"))
	require.NotNil(t, cmd.Flags().Lookup("clean"))
	assert.Equal(t, "c", cmd.Flags().Lookup("config").Shorthand)
}

func testOverrides(t *testing.T) config.Overrides {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "ftpdeploy.yml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  in_memory: true\n"), 0o600))

	return config.Overrides{
		ConfigPath:  path,
		SyncRoot:    dir,
		FTPHost:     "ftp.example.com",
		FTPRoot:     "www",
		FTPUser:     "deploy",
		FTPPassword: "s3cret",
		Webhook:     "T00000000/B00000000/XXXXXXXXXXXXXXXXXXXXXXXX",
	}
}

func TestNewApp_ResolvesGraph(t *testing.T) {
	app := newApp(testOverrides(t))

	require.NoError(t, app.Err())
}

func TestNewApp_InvalidConfig(t *testing.T) {
	overrides := testOverrides(t)
	overrides.FTPHost = "ftp.example.com/www"

	app := newApp(overrides)

	require.Error(t, app.Err())
}
