package versions

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/minecraft"
	"github.com/PiotrWarzachowski/blue-launcher/internal/storage"
	"github.com/PiotrWarzachowski/blue-launcher/providers"
)

const (
	colorReset  = "\033[0m"
	colorDim    = "\033[2m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

var VersionsCommand = &cli.Command{
	Name:    "versions",
	Aliases: []string{"ls"},
	Usage:   "List game versions from the live manifest",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "Only show one type: release, snapshot, old_beta, old_alpha",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Value:   20,
			Usage:   "Maximum number of versions to show (0 for all)",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug output",
		},
	},
	Action: versionsAction,
}

func versionsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := providers.Setup(cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := storage.NewAccountStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize account storage: %w", err)
	}

	entries, err := providers.NewLaunchProvider(cfg, store, logger).Versions(ctx, cmd.String("type"))
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("📭 No versions match")
		return nil
	}

	limit := int(cmd.Int("limit"))
	shown := entries
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	layout := minecraft.Layout{Root: cfg.GameDir}
	for _, v := range shown {
		fmt.Println(formatEntry(v, layout.Installed(v.ID)))
	}
	if len(shown) < len(entries) {
		fmt.Printf("%s... and %d more (use --limit 0 to show all)%s\n", colorDim, len(entries)-len(shown), colorReset)
	}

	return nil
}

func formatEntry(v minecraft.VersionManifestEntry, installed bool) string {
	color := colorDim
	switch v.Type {
	case "release":
		color = colorGreen
	case "snapshot":
		color = colorYellow
	}

	line := fmt.Sprintf("%s%-20s%s %-10s", colorCyan, v.ID, colorReset, color+v.Type+colorReset)
	if !v.ReleaseTime.IsZero() {
		line += " " + v.ReleaseTime.Format(time.DateOnly)
	}
	if installed {
		line += " ✓"
	}
	return line
}
