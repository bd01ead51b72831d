package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	if err := newApp(&Runner{logger: logger}).Run(context.Background(), os.Args); err != nil {
		logger.Fatal("command failed", "err", err)
	}
}

func newApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:  "musicsharectl",
		Usage: "Operate a musicshare deployment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
				Sources: cli.EnvVars("MUSICSHARE_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   runner.before,
		Commands: []*cli.Command{migrateCommand(runner), adminCommand(runner)},
	}
}
