package providers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/PiotrWarzachowski/blue-launcher/internal/config"
	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/minecraft"
	"github.com/PiotrWarzachowski/blue-launcher/internal/storage"
)

type LaunchProvider struct {
	launcher *minecraft.Launcher
	storage  *storage.Storage
}

func NewLaunchProvider(cfg *config.Config, store *storage.Storage, logger *zap.Logger, opts ...minecraft.Option) *LaunchProvider {
	return &LaunchProvider{
		launcher: minecraft.NewLauncher(cfg, NewFetcher(cfg, logger), logger, opts...),
		storage:  store,
	}
}

// Launch starts versionID with the stored account.
func (p *LaunchProvider) Launch(ctx context.Context, versionID string, reporter minecraft.ProgressReporter) (*minecraft.LaunchResult, error) {
	if versionID == "" {
		return nil, fmt.Errorf("version cannot be empty")
	}

	stored, err := p.storage.LoadAccount()
	if err != nil {
		return nil, &minecraft.LaunchError{Reason: minecraft.ReasonCredentialsInvalid, Message: "stored account is unreadable", Err: err}
	}
	if stored == nil {
		return nil, &minecraft.LaunchError{Reason: minecraft.ReasonCredentialsInvalid, Message: "not signed in"}
	}

	return p.launcher.Launch(ctx, versionID, stored.Account(), reporter)
}

func (p *LaunchProvider) Versions(ctx context.Context, kind string) ([]minecraft.VersionManifestEntry, error) {
	return p.launcher.Resolver().Versions(ctx, kind)
}

// InstallMod downloads rawURL into the game's mods directory as name.
func (p *LaunchProvider) InstallMod(ctx context.Context, rawURL, name string, reporter minecraft.ProgressReporter) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("mod url cannot be empty")
	}
	return p.launcher.Cache().InstallMod(ctx, rawURL, name, reporter)
}

func (p *LaunchProvider) Mods() ([]string, error) {
	return p.launcher.Cache().Mods()
}
