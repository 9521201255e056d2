package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/blue-launcher/actions/launch"
	"github.com/PiotrWarzachowski/blue-launcher/actions/login"
	"github.com/PiotrWarzachowski/blue-launcher/actions/mods"
	"github.com/PiotrWarzachowski/blue-launcher/actions/versions"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:    "blue-launcher",
		Usage:   "Minecraft: Java Edition launcher",
		Version: "0.1.0",
		Action: func(context.Context, *cli.Command) error {
			fmt.Println("Blue Launcher - Use 'blue-launcher help' for available commands")
			return nil
		},
		Commands: []*cli.Command{
			login.LoginCommand,
			login.LogoutCommand,
			login.StatusCommand,
			launch.LaunchCommand,
			versions.VersionsCommand,
			mods.ModsCommand,
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
