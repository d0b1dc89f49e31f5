package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/edgard/crmbot/internal/datetime"
)

// RandomRunner executes the random command.
type RandomRunner struct {
	Jitter    *datetime.Jitter
	Formatter *datetime.Formatter
	Stdout    io.Writer
}

// RandomOptions holds the options for the random command.
type RandomOptions struct {
	Timezone  string
	MinHour   int
	MaxHour   int
	DayOffset string
	Count     int
	Display   bool
}

func randomCommand() *cli.Command {
	return &cli.Command{
		Name:  "random",
		Usage: "Generate jittered timestamps inside a local time window",
		Description: `Print canonical UTC timestamps whose local date is today shifted by
--offset and whose local hour lies between --min-hour and --max-hour.
Defaults come from the reminders config section.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tz", Usage: "Zone of the time window"},
			&cli.IntFlag{Name: "min-hour", Value: -1, Usage: "First hour of the window"},
			&cli.IntFlag{Name: "max-hour", Value: -1, Usage: "Last hour of the window"},
			&cli.StringFlag{Name: "offset", Usage: `Day offset, e.g. "+1 day", "2 weeks", "today"`},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 1, Usage: "Number of timestamps"},
			&cli.BoolFlag{Name: "display", Usage: "Also print each value in the locale format"},
		},
		Action: randomAction,
	}
}

func randomAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	opts := RandomOptions{
		Timezone:  cfg.Reminders.TimeZone,
		MinHour:   cfg.Reminders.MinHour,
		MaxHour:   cfg.Reminders.MaxHour,
		DayOffset: cfg.Reminders.DayOffset,
		Count:     cmd.Int("count"),
		Display:   cmd.Bool("display"),
	}
	if cmd.IsSet("tz") {
		opts.Timezone = cmd.String("tz")
	}
	if cmd.IsSet("min-hour") {
		opts.MinHour = cmd.Int("min-hour")
	}
	if cmd.IsSet("max-hour") {
		opts.MaxHour = cmd.Int("max-hour")
	}
	if cmd.IsSet("offset") {
		opts.DayOffset = cmd.String("offset")
	}

	r := &RandomRunner{Jitter: datetime.NewJitter(), Formatter: formatter, Stdout: cmd.Root().Writer}
	return r.Run(opts)
}

// Run executes the random command.
func (r *RandomRunner) Run(opts RandomOptions) error {
	if opts.Count < 1 {
		return errors.New("--count must be at least 1")
	}

	for range opts.Count {
		t, err := r.Jitter.RandomDateTime(opts.Timezone, opts.MinHour, opts.MaxHour, opts.DayOffset)
		if err != nil {
			return err
		}

		if opts.Display {
			_, _ = fmt.Fprintf(r.Stdout, "%s\t%s\n", datetime.FormatSystemDateTime(t), r.Formatter.FormatTime(t))
			continue
		}
		_, _ = fmt.Fprintln(r.Stdout, datetime.FormatSystemDateTime(t))
	}
	return nil
}
