package launch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/minecraft"
	"github.com/PiotrWarzachowski/blue-launcher/internal/storage"
	"github.com/PiotrWarzachowski/blue-launcher/providers"
)

// LaunchCommand installs a version if needed and starts the game
var LaunchCommand = &cli.Command{
	Name:      "launch",
	Usage:     "Download a game version and start it",
	ArgsUsage: "<version>",
	Aliases:   []string{"play", "run"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "java",
			Usage: "Java runtime executable",
		},
		&cli.StringFlag{
			Name:  "game-dir",
			Usage: "Game directory",
		},
		&cli.StringFlag{
			Name:  "min-memory",
			Usage: "Initial heap size, e.g. 512M",
		},
		&cli.StringFlag{
			Name:  "max-memory",
			Usage: "Maximum heap size, e.g. 4G",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug output",
		},
	},
	Action: launchAction,
}

func launchAction(ctx context.Context, cmd *cli.Command) error {
	versionID := cmd.Args().First()
	if versionID == "" {
		return cli.Exit("usage: blue-launcher launch <version>", 1)
	}

	cfg, logger, err := providers.Setup(cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	if v := cmd.String("java"); v != "" {
		cfg.JavaPath = v
	}
	if v := cmd.String("game-dir"); v != "" {
		cfg.GameDir = v
	}
	if v := cmd.String("min-memory"); v != "" {
		cfg.MinMemory = v
	}
	if v := cmd.String("max-memory"); v != "" {
		cfg.MaxMemory = v
	}

	store, err := storage.NewAccountStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize account storage: %w", err)
	}

	provider := providers.NewLaunchProvider(cfg, store, logger)

	var reporter Reporter = NewLogReporter(logger)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		reporter = NewCLIReporter(ctx)
	}

	fmt.Printf("🚀 Preparing Minecraft %s in %s\n\n", versionID, cfg.GameDir)

	result, err := provider.Launch(ctx, versionID, reporter)

	reporter.Finish()

	if err != nil {
		fmt.Printf("\n❌ %s\n", describeLaunchError(err))
		return cli.Exit("", 1)
	}

	fmt.Printf("\n✅ Minecraft %s started (pid %d)\n", result.VersionID, result.PID)
	logger.Debug("launch finished", zap.String("launch_id", result.LaunchID), zap.Strings("args", redact(result.Args)))

	if n := result.Libraries.Skipped(); n > 0 {
		fmt.Printf("⚠️ %d libraries could not be downloaded and were left off the classpath\n", n)
	}
	if result.AssetsError != nil {
		fmt.Printf("⚠️ Assets unavailable: %v\n", result.AssetsError)
	} else if result.Assets != nil && result.Assets.Skipped() > 0 {
		fmt.Printf("⚠️ %d assets could not be downloaded\n", result.Assets.Skipped())
	}

	return nil
}

func describeLaunchError(err error) string {
	var le *minecraft.LaunchError
	if !errors.As(err, &le) {
		return err.Error()
	}

	switch le.Reason {
	case minecraft.ReasonRuntimeMissing:
		return fmt.Sprintf("Java runtime not found (%s). Install Java or pass --java.", le.Message)
	case minecraft.ReasonVersionNotInstalled:
		return fmt.Sprintf("Unknown version %q. Run 'blue-launcher versions' to list them.", le.Message)
	case minecraft.ReasonCredentialsInvalid:
		if le.Message == "" {
			return "Sign-in required. Run 'blue-launcher login' first."
		}
		return fmt.Sprintf("Sign-in required (%s). Run 'blue-launcher login' first.", le.Message)
	case minecraft.ReasonConfigMissing:
		return fmt.Sprintf("Configuration incomplete: %v", le.Err)
	}
	return err.Error()
}

// redact hides the access token in logged argument vectors.
func redact(args []string) []string {
	out := append([]string(nil), args...)
	for i := 0; i+1 < len(out); i++ {
		if out[i] == "--accessToken" {
			out[i+1] = "***"
		}
	}
	return out
}
