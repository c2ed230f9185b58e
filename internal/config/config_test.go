package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	err := os.WriteFile(path, []byte(content), 0666)
	require.NoError(t, err)
}

func TestReadMergesLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{
		// comments and trailing commas are fine
		database: {file: "drops.db"},
		http: {addr: ":9000", access_token: "secret"},
		inbox: {dir: "/srv/inbox", schedule: "@every 5m"},
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		http: {addr: ":9001"},
		verbose: true,
	}`)

	cfg, err := Load(filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "drops.db", cfg.Database.File)
	require.Equal(t, ":9001", cfg.Http.Addr)
	require.Equal(t, "secret", cfg.Http.AccessToken)
	require.True(t, cfg.Verbose)
	require.Equal(t, "@every 5m", cfg.Inbox.Schedule)
	require.Equal(t, filepath.Join("/srv/inbox", "processed"), cfg.Inbox.ProcessedDir)
	require.Equal(t, filepath.Join("/srv/inbox", "failed"), cfg.Inbox.FailedDir)
}

func TestReadMissing(t *testing.T) {
	_, err := Read[Config](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, path, `{database: `)
	_, err := Read[Config](path)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	writeFile(t, path, `{data_dir: "/var/lib/ttvdrops"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/var/lib/ttvdrops", "ttvdrops.db"), cfg.Database.File)
	require.Equal(t, filepath.Join("/var/lib/ttvdrops", "json"), cfg.ArchiveDir())
	require.Equal(t, "127.0.0.1:8000", cfg.Http.Addr)
	require.Equal(t, "", cfg.Inbox.ProcessedDir)
	require.Equal(t, 587, cfg.Smtp.Port)
}
