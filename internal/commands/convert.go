package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/edgard/crmbot/internal/datetime"
)

// ConvertRunner executes the convert command.
type ConvertRunner struct {
	Formatter *datetime.Formatter
	Stdout    io.Writer
}

// ConvertOptions holds the options for the convert command.
type ConvertOptions struct {
	Value    string
	FromTZ   string
	ToTZ     string
	Pattern  string
	DateOnly bool
	ToSystem bool
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert between canonical and display date/time strings",
		ArgsUsage: "<value>",
		Description: `Render a canonical "YYYY-MM-DD HH:mm:ss" timestamp in the configured
locale pattern and timezone, or with --to-system parse a display string back.

EXAMPLES:
   crmbot convert "2021-05-20 10:00:00"
   crmbot convert --to-tz Europe/Kiev --pattern "DD-MM-YYYY HH:mm" "2021-05-20 10:00"
   crmbot convert --to-system "20.05.2021 13:00"
   crmbot convert --date-only 2021-05-20`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from-tz", Usage: "Zone of the canonical value (default UTC)"},
			&cli.StringFlag{Name: "to-tz", Usage: "Display zone (default: locale.time_zone)"},
			&cli.StringFlag{Name: "pattern", Usage: "Display pattern (default: locale date and time formats)"},
			&cli.BoolFlag{Name: "date-only", Usage: "Convert a date without time"},
			&cli.BoolFlag{Name: "to-system", Usage: "Parse a display value into canonical form"},
		},
		Action: convertAction,
	}
}

func convertAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("usage: crmbot convert [options] <value>")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	r := &ConvertRunner{Formatter: formatter, Stdout: cmd.Root().Writer}
	return r.Run(ConvertOptions{
		Value:    cmd.Args().First(),
		FromTZ:   cmd.String("from-tz"),
		ToTZ:     cmd.String("to-tz"),
		Pattern:  cmd.String("pattern"),
		DateOnly: cmd.Bool("date-only"),
		ToSystem: cmd.Bool("to-system"),
	})
}

// Run executes the convert command.
func (r *ConvertRunner) Run(opts ConvertOptions) error {
	var (
		result string
		err    error
	)

	switch {
	case opts.DateOnly && opts.ToSystem:
		result, err = r.Formatter.ConvertDateToSystem(opts.Value)
	case opts.DateOnly:
		result, err = r.Formatter.ConvertSystemDate(opts.Value)
	default:
		var convertOpts []datetime.ConvertOption
		if opts.FromTZ != "" {
			convertOpts = append(convertOpts, datetime.SystemTimezone(opts.FromTZ))
		}
		if opts.ToTZ != "" {
			convertOpts = append(convertOpts, datetime.DisplayTimezone(opts.ToTZ))
		}
		if opts.Pattern != "" {
			convertOpts = append(convertOpts, datetime.WithPattern(opts.Pattern))
		}

		if opts.ToSystem {
			result, err = r.Formatter.ConvertDateTimeToSystem(opts.Value, convertOpts...)
		} else {
			result, err = r.Formatter.ConvertSystemDateTime(opts.Value, convertOpts...)
		}
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(r.Stdout, result)
	return nil
}
