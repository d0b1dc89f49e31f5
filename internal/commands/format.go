package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/edgard/crmbot/internal/datetime"
)

// FormatRunner executes the format command.
type FormatRunner struct {
	Stdout io.Writer
}

func formatCommand() *cli.Command {
	return &cli.Command{
		Name:      "format",
		Usage:     "Translate locale patterns into system patterns",
		ArgsUsage: "[pattern...]",
		Description: `Print the system pattern for each locale pattern, e.g. "DD.MM.YYYY hh:mm a"
becomes "d.m.Y h:i a". Without arguments the configured patterns are shown.`,
		Action: formatAction,
	}
}

func formatAction(_ context.Context, cmd *cli.Command) error {
	patterns := cmd.Args().Slice()
	if len(patterns) == 0 {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		patterns = []string{cfg.Locale.DateFormat, cfg.Locale.TimeFormat}
	}

	r := &FormatRunner{Stdout: cmd.Root().Writer}
	return r.Run(patterns)
}

// Run executes the format command.
func (r *FormatRunner) Run(patterns []string) error {
	cyan := color.New(color.FgCyan).SprintFunc()
	for _, p := range patterns {
		_, _ = fmt.Fprintf(r.Stdout, "%s => %s\n", cyan(p), datetime.ConvertFormatToSystem(p))
	}
	return nil
}
