// Package commands provides the crmbot command-line interface.
package commands

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/edgard/crmbot/internal/config"
	"github.com/edgard/crmbot/internal/datetime"
)

// Version is set at build time.
var Version = "dev"

// MakeApp creates a new CLI application instance.
func MakeApp() *cli.Command {
	return &cli.Command{
		Name:    "crmbot",
		Usage:   "CRM assistant bot with locale-aware date handling",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "./config.yaml",
				Usage:   "Path to the YAML configuration file",
				Sources: cli.EnvVars("CRMBOT_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			convertCommand(),
			formatCommand(),
			randomCommand(),
			addUserCommand(),
		},
		CommandNotFound: func(_ context.Context, cmd *cli.Command, command string) {
			_ = cli.ShowAppHelp(cmd)
			w := lo.CoalesceOrEmpty(cmd.Root().ErrWriter, cmd.Root().Writer)
			_, _ = fmt.Fprintf(w, "\nCommand not found: %s\n", command)
		},
	}
}

// loadConfig loads the file named by the root --config flag.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.Load(cmd.Root().String("config"))
}

// newFormatter builds the display formatter from the locale section.
func newFormatter(cfg *config.Config) (*datetime.Formatter, error) {
	return datetime.New(cfg.Locale.DateFormat, cfg.Locale.TimeFormat, cfg.Locale.TimeZone)
}
