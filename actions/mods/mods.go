package mods

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/PiotrWarzachowski/blue-launcher/actions/launch"
	"github.com/PiotrWarzachowski/blue-launcher/internal/config"
	"github.com/PiotrWarzachowski/blue-launcher/internal/storage"
	"github.com/PiotrWarzachowski/blue-launcher/providers"
)

var gameDirFlag = &cli.StringFlag{
	Name:  "game-dir",
	Usage: "Game directory",
}

var debugFlag = &cli.BoolFlag{
	Name:    "debug",
	Aliases: []string{"d"},
	Usage:   "Enable debug output",
}

// ModsCommand manages mod archives in the game's mods directory
var ModsCommand = &cli.Command{
	Name:  "mods",
	Usage: "Manage installed mods",
	Commands: []*cli.Command{
		{
			Name:      "install",
			Usage:     "Download a mod into the mods directory",
			ArgsUsage: "<url>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "name",
					Aliases: []string{"n"},
					Usage:   "File name to save as (defaults to the last part of the URL)",
				},
				gameDirFlag,
				debugFlag,
			},
			Action: installAction,
		},
		{
			Name:   "list",
			Usage:  "List installed mods",
			Flags:  []cli.Flag{gameDirFlag, debugFlag},
			Action: listAction,
		},
	},
}

func newProvider(cmd *cli.Command) (*providers.LaunchProvider, *config.Config, *zap.Logger, error) {
	cfg, logger, err := providers.Setup(cmd.Bool("debug"))
	if err != nil {
		return nil, nil, nil, err
	}
	if v := cmd.String("game-dir"); v != "" {
		cfg.GameDir = v
	}

	store, err := storage.NewAccountStorage()
	if err != nil {
		return nil, nil, logger, fmt.Errorf("failed to initialize account storage: %w", err)
	}

	return providers.NewLaunchProvider(cfg, store, logger), cfg, logger, nil
}

func installAction(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.Args().First()
	if rawURL == "" {
		return cli.Exit("usage: blue-launcher mods install <url> [--name file]", 1)
	}

	provider, _, logger, err := newProvider(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var reporter launch.Reporter = launch.NewLogReporter(logger)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		reporter = launch.NewCLIReporter(ctx)
	}

	path, err := provider.InstallMod(ctx, rawURL, cmd.String("name"), reporter)
	reporter.Finish()
	if err != nil {
		fmt.Printf("\n❌ %v\n", err)
		return cli.Exit("", 1)
	}

	fmt.Printf("\n✓ Mod saved to %s\n", path)
	return nil
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	provider, cfg, logger, err := newProvider(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	names, err := provider.Mods()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("📭 No mods installed in %s\n", cfg.GameDir)
		return nil
	}

	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
	return nil
}
