package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingPathReturnsZeroValue(t *testing.T) {
	f, err := LoadFile("")
	require.NoError(t, err)
	require.Equal(t, "", f.DatabaseURL)
}

func TestLoadFileMissingFileReturnsZeroValue(t *testing.T) {
	f, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, "", f.DatabaseURL)
}

func TestLoadFileDecodesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "area.yaml")
	contents := "database_url: postgres://localhost/area\nscheduler:\n  timezone: Europe/Paris\nsmtp:\n  host: smtp.example.com\n  port: 2525\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/area", f.DatabaseURL)
	require.Equal(t, "Europe/Paris", f.Scheduler.Timezone)
	require.Equal(t, "smtp.example.com", f.SMTP.Host)
	require.Equal(t, 2525, f.SMTP.Port)
}
