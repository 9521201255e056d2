package minecraft

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PiotrWarzachowski/blue-launcher/internal/config"
	"github.com/PiotrWarzachowski/blue-launcher/internal/logging"
	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/microsoft"
)

const userTypeMSA = "msa"

type Launcher struct {
	cfg         *config.Config
	layout      Layout
	platform    Platform
	resolver    *Resolver
	cache       *Cache
	findRuntime RuntimeFinder
	starter     Starter
	logger      *zap.Logger
}

type Option func(*Launcher)

func WithStarter(s Starter) Option {
	return func(l *Launcher) { l.starter = s }
}

func WithRuntimeFinder(f RuntimeFinder) Option {
	return func(l *Launcher) { l.findRuntime = f }
}

func WithPlatform(p Platform) Option {
	return func(l *Launcher) { l.platform = p }
}

func NewLauncher(cfg *config.Config, fetcher Fetcher, logger *zap.Logger, opts ...Option) *Launcher {
	l := &Launcher{
		cfg:         cfg,
		layout:      Layout{Root: cfg.GameDir},
		platform:    CurrentPlatform(),
		findRuntime: exec.LookPath,
		starter:     detachedStarter{},
		logger:      logging.OrNop(logger),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.resolver = NewResolver(l.layout, cfg.Endpoints.Manifest, fetcher, l.logger)
	l.cache = NewCache(l.layout, cfg.Endpoints.Resources, fetcher, l.platform, cfg.DownloadWorkers, l.logger)
	return l
}

func (l *Launcher) Resolver() *Resolver { return l.resolver }

func (l *Launcher) Cache() *Cache { return l.cache }

// Launch bootstraps versionID and starts the game detached. Local checks
// (configuration, credentials, runtime) run before any network request.
func (l *Launcher) Launch(ctx context.Context, versionID string, account *microsoft.Account, pr ProgressReporter) (*LaunchResult, error) {
	pr = orNop(pr)

	if err := l.cfg.Validate(); err != nil {
		return nil, &LaunchError{Reason: ReasonConfigMissing, Err: err}
	}
	if account == nil || !account.Tokens.Valid() || account.Profile.ID == "" {
		return nil, &LaunchError{Reason: ReasonCredentialsInvalid, Message: "sign in again to obtain a complete token set"}
	}

	runtimePath, err := l.findRuntime(l.cfg.JavaPath)
	if err != nil {
		return nil, &LaunchError{Reason: ReasonRuntimeMissing, Message: fmt.Sprintf("%q not found", l.cfg.JavaPath), Err: err}
	}

	res := &LaunchResult{
		LaunchID:  uuid.New().String(),
		VersionID: versionID,
		Runtime:   runtimePath,
	}
	log := l.logger.With(zap.String("launch_id", res.LaunchID), zap.String("version", versionID))

	if err := l.layout.Ensure(); err != nil {
		return nil, err
	}

	pr.Report(ProgressReport{Type: ProgressVersion, Step: StepInit, Message: "Resolving " + versionID})
	desc, err := l.resolver.Resolve(ctx, versionID)
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			return nil, &LaunchError{Reason: ReasonVersionNotInstalled, Message: versionID, Err: err}
		}
		return nil, err
	}
	pr.Report(ProgressReport{Type: ProgressVersion, Step: StepDone, Message: desc.ID})

	clientPath, err := l.cache.EnsureClient(ctx, desc, pr)
	if err != nil {
		return nil, err
	}

	res.Libraries, err = l.cache.EnsureLibraries(ctx, desc, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure libraries: %w", err)
	}

	res.Assets, err = l.cache.EnsureAssets(ctx, desc, pr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("continuing without assets", zap.Error(err))
		res.AssetsError = err
	}

	natives := l.layout.NativesPath(desc.ID)
	if err := os.MkdirAll(natives, 0755); err != nil {
		return nil, fmt.Errorf("failed to create natives directory: %w", err)
	}

	res.Args = BuildArguments(LaunchParams{
		Descriptor:  desc,
		Classpath:   append(append([]string{}, res.Libraries.Classpath...), clientPath),
		NativesDir:  natives,
		GameDir:     l.cfg.GameDir,
		AssetsDir:   l.layout.AssetsPath(),
		MinMemory:   l.cfg.MinMemory,
		MaxMemory:   l.cfg.MaxMemory,
		Profile:     account.Profile,
		AccessToken: account.Tokens.MinecraftAccessToken,
	})

	pr.Report(ProgressReport{Type: ProgressLaunch, Step: StepInit, Message: "Starting " + desc.ID})
	pid, err := l.starter.Start(ProcessSpec{Path: runtimePath, Args: res.Args, Dir: l.cfg.GameDir})
	if err != nil {
		return nil, fmt.Errorf("failed to start game process: %w", err)
	}
	pr.Report(ProgressReport{Type: ProgressLaunch, Step: StepDone, Message: desc.ID})

	res.PID = pid
	res.Success = true
	log.Info("game started",
		zap.Int("pid", pid),
		zap.Int("classpath_entries", len(res.Libraries.Classpath)+1),
		zap.Int("skipped_libraries", res.Libraries.Skipped()),
	)
	return res, nil
}

type LaunchParams struct {
	Descriptor  *VersionDescriptor
	Classpath   []string
	NativesDir  string
	GameDir     string
	AssetsDir   string
	MinMemory   string
	MaxMemory   string
	Profile     microsoft.PlayerProfile
	AccessToken string
}

// BuildArguments returns the argument vector after the runtime executable:
// JVM flags, classpath, main class, then game arguments.
func BuildArguments(p LaunchParams) []string {
	assetIndex := p.Descriptor.AssetIndex.ID
	if assetIndex == "" {
		assetIndex = p.Descriptor.Assets
	}

	args := []string{
		"-Xms" + p.MinMemory,
		"-Xmx" + p.MaxMemory,
		"-Djava.library.path=" + p.NativesDir,
		"-cp", strings.Join(p.Classpath, string(filepath.ListSeparator)),
		p.Descriptor.MainClass,
		"--username", p.Profile.Name,
		"--version", p.Descriptor.ID,
		"--gameDir", p.GameDir,
		"--assetsDir", p.AssetsDir,
		"--assetIndex", assetIndex,
		"--uuid", p.Profile.ID,
		"--accessToken", p.AccessToken,
		"--userType", userTypeMSA,
	}
	if p.Descriptor.Type != "" {
		args = append(args, "--versionType", p.Descriptor.Type)
	}
	return args
}
