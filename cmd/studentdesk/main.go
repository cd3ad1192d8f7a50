package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/yigit/studentdesk/internal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		l := logger.Get()
		l.Error().Err(err).Msg("studentdesk failed")
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "studentdesk",
		Usage: "manage students and courses against a REST backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				Value:   "configs/config.yaml",
				EnvVars: []string{"STUDENTDESK_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "api",
				Usage:   "backend base URL, overrides api.base_url",
				EnvVars: []string{"API_BASE_URL"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			devAPICommand(),
			studentsCommand(),
			coursesCommand(),
		},
	}
}
