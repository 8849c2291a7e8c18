package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path of the TOML config file",
		EnvVars: []string{"CONFIG_FILE"},
		Value:   "config.toml",
	}

	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "Hauntpass"
	s.app.Usage = "Reward claim service of the haunted passport"
	s.app.Flags = []cli.Flag{configFlag}
	s.app.Before = s.loadContext
	s.app.After = func(*cli.Context) error {
		if s.stop != nil {
			s.stop()
		}
		return nil
	}
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serves the claim, progress, leaderboard and websocket apis.`,
		},
		{
			Action:      s.startWorker,
			Name:        "worker",
			Usage:       "Start service worker",
			Category:    "Worker",
			Description: `Reconciles token and nft transactions left pending by claims.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database to the latest version",
			Category:    "Database",
			Description: `Applies every migration newer than the recorded database version.`,
		},
	}
}
