package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BLUE_LAUNCHER_GAME_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, dir, cfg.GameDir)
	require.Equal(t, "java", cfg.JavaPath)
	require.Equal(t, "512M", cfg.MinMemory)
	require.Equal(t, "2G", cfg.MaxMemory)
	require.Equal(t, 8, cfg.DownloadWorkers)
	require.Equal(t, 10, cfg.MaxRedirects)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json", cfg.Endpoints.Manifest)
	require.Equal(t, "https://xsts.auth.xboxlive.com/xsts/authorize", cfg.Endpoints.XSTS)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BLUE_LAUNCHER_GAME_DIR", t.TempDir())
	t.Setenv("BLUE_LAUNCHER_CLIENT_ID", "client-123")
	t.Setenv("BLUE_LAUNCHER_MAX_MEMORY", "4G")
	t.Setenv("BLUE_LAUNCHER_DOWNLOAD_WORKERS", "0")
	t.Setenv("BLUE_LAUNCHER_MANIFEST_URL", "http://127.0.0.1:1/manifest.json")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "client-123", cfg.ClientID)
	require.Equal(t, "4G", cfg.MaxMemory)
	require.Equal(t, 8, cfg.DownloadWorkers)
	require.Equal(t, "http://127.0.0.1:1/manifest.json", cfg.Endpoints.Manifest)
	require.NoError(t, cfg.RequireClientID())
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("BLUE_LAUNCHER_GAME_DIR", t.TempDir())
	t.Setenv("BLUE_LAUNCHER_HTTP_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestDefaultGameDir_UsesConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))
	t.Setenv("BLUE_LAUNCHER_GAME_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.GameDir)
	require.Equal(t, defaultGameDirName, filepath.Base(cfg.GameDir))
}

func TestValidate_Missing(t *testing.T) {
	cfg := Default("")
	require.ErrorIs(t, cfg.Validate(), ErrConfigMissing)

	cfg = Default(t.TempDir())
	require.ErrorIs(t, cfg.RequireClientID(), ErrConfigMissing)

	cfg.JavaPath = ""
	require.ErrorIs(t, cfg.Validate(), ErrConfigMissing)
}

func TestDefault_MatchesEnvDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BLUE_LAUNCHER_GAME_DIR", dir)

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, loaded, Default(dir))
}

func TestDefault_IgnoresEnvironment(t *testing.T) {
	t.Setenv("BLUE_LAUNCHER_JAVA_PATH", "/opt/other/java")
	t.Setenv("BLUE_LAUNCHER_CLIENT_ID", "from-env")

	cfg := Default("/games")
	require.Equal(t, "/games", cfg.GameDir)
	require.Equal(t, "java", cfg.JavaPath)
	require.Empty(t, cfg.ClientID)
	require.Equal(t, "XboxLive.signin offline_access", cfg.Scope)
	require.Equal(t, "https://resources.download.minecraft.net", cfg.Endpoints.Resources)
}
