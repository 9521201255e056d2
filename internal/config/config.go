package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
)

// ErrConfigMissing reports a required setting that was not provided.
var ErrConfigMissing = errors.New("required configuration missing")

const (
	defaultGameDirName = "minecraft"
	defaultAppDirName  = "blue-launcher"
	windowsGameDirName = ".minecraft"
)

// Config is threaded into every component at construction. Nothing in the
// pipeline reads ambient state.
type Config struct {
	GameDir  string `env:"BLUE_LAUNCHER_GAME_DIR"`
	ClientID string `env:"BLUE_LAUNCHER_CLIENT_ID"`
	Scope    string `env:"BLUE_LAUNCHER_OAUTH_SCOPE" envDefault:"XboxLive.signin offline_access"`

	JavaPath  string `env:"BLUE_LAUNCHER_JAVA_PATH"  envDefault:"java"`
	MinMemory string `env:"BLUE_LAUNCHER_MIN_MEMORY" envDefault:"512M"`
	MaxMemory string `env:"BLUE_LAUNCHER_MAX_MEMORY" envDefault:"2G"`

	DownloadWorkers int           `env:"BLUE_LAUNCHER_DOWNLOAD_WORKERS" envDefault:"8"`
	MaxRedirects    int           `env:"BLUE_LAUNCHER_MAX_REDIRECTS"    envDefault:"10"`
	HTTPTimeout     time.Duration `env:"BLUE_LAUNCHER_HTTP_TIMEOUT"     envDefault:"30s"`

	Endpoints Endpoints
}

// Endpoints lists every remote service the launcher talks to.
type Endpoints struct {
	DeviceCode string `env:"BLUE_LAUNCHER_DEVICE_CODE_URL" envDefault:"https://login.microsoftonline.com/consumers/oauth2/v2.0/devicecode"`
	Token      string `env:"BLUE_LAUNCHER_TOKEN_URL"       envDefault:"https://login.microsoftonline.com/consumers/oauth2/v2.0/token"`
	XboxLive   string `env:"BLUE_LAUNCHER_XBL_URL"         envDefault:"https://user.auth.xboxlive.com/user/authenticate"`
	XSTS       string `env:"BLUE_LAUNCHER_XSTS_URL"        envDefault:"https://xsts.auth.xboxlive.com/xsts/authorize"`
	Minecraft  string `env:"BLUE_LAUNCHER_MC_LOGIN_URL"    envDefault:"https://api.minecraftservices.com/authentication/login_with_xbox"`
	Profile    string `env:"BLUE_LAUNCHER_PROFILE_URL"     envDefault:"https://api.minecraftservices.com/minecraft/profile"`
	Manifest   string `env:"BLUE_LAUNCHER_MANIFEST_URL"    envDefault:"https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"`
	Resources  string `env:"BLUE_LAUNCHER_RESOURCES_URL"   envDefault:"https://resources.download.minecraft.net"`
}

// Load parses BLUE_LAUNCHER_* variables and fills in the game directory
// when it was not set.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.GameDir == "" {
		dir, err := DefaultGameDir()
		if err != nil {
			return nil, err
		}
		cfg.GameDir = dir
	}

	if cfg.DownloadWorkers < 1 {
		cfg.DownloadWorkers = Default("").DownloadWorkers
	}

	return &cfg, nil
}

// Default returns a configuration with every envDefault applied and the given
// game directory, ignoring the process environment. Used by tests and
// embedders that do not read the environment.
func Default(gameDir string) *Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config: invalid envDefault tag: %v", err))
	}
	cfg.GameDir = gameDir
	return &cfg
}

// DefaultGameDir mirrors where the official launcher keeps its content on
// Windows and uses the user config directory elsewhere.
func DefaultGameDir() (string, error) {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, windowsGameDirName), nil
		}
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, defaultAppDirName, defaultGameDirName), nil
}

// RequireClientID is checked before the sign-in flow starts.
func (c *Config) RequireClientID() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: BLUE_LAUNCHER_CLIENT_ID", ErrConfigMissing)
	}
	return nil
}

// Validate checks the settings the bootstrap pipeline cannot work without.
func (c *Config) Validate() error {
	if c.GameDir == "" {
		return fmt.Errorf("%w: BLUE_LAUNCHER_GAME_DIR", ErrConfigMissing)
	}
	if c.JavaPath == "" {
		return fmt.Errorf("%w: BLUE_LAUNCHER_JAVA_PATH", ErrConfigMissing)
	}
	if c.Endpoints.Manifest == "" {
		return fmt.Errorf("%w: BLUE_LAUNCHER_MANIFEST_URL", ErrConfigMissing)
	}
	return nil
}
