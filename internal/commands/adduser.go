package commands

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/edgard/crmbot/internal/auth"
	"github.com/edgard/crmbot/internal/database"
)

// AddUserRunner executes the adduser command.
type AddUserRunner struct {
	Auth   *auth.Authenticator
	Stdout io.Writer
}

// AddUserOptions holds the options for the adduser command.
type AddUserOptions struct {
	UserName string
	Password string
	Type     string
}

func addUserCommand() *cli.Command {
	return &cli.Command{
		Name:      "adduser",
		Usage:     "Create a CRM user that can sign in through the bot",
		ArgsUsage: "<name> <password>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Value: database.UserTypeRegular,
				Usage: "User type (regular, admin, api, system)",
			},
		},
		Action: addUserAction,
	}
}

func addUserAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return errors.New("usage: crmbot adduser [--type TYPE] <name> <password>")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	r := &AddUserRunner{
		Auth:   auth.NewAuthenticator(database.NewStore(db, nil, nil), nil),
		Stdout: cmd.Root().Writer,
	}
	return r.Run(ctx, AddUserOptions{
		UserName: cmd.Args().Get(0),
		Password: cmd.Args().Get(1),
		Type:     cmd.String("type"),
	})
}

// Run executes the adduser command.
func (r *AddUserRunner) Run(ctx context.Context, opts AddUserOptions) error {
	switch opts.Type {
	case database.UserTypeRegular, database.UserTypeAdmin, database.UserTypeAPI, database.UserTypeSystem:
	default:
		return errors.New("--type must be one of regular, admin, api, system")
	}

	user, err := r.Auth.CreateUser(ctx, opts.UserName, opts.Password, opts.Type)
	if err != nil {
		return err
	}

	_, _ = color.New(color.FgGreen).Fprintf(r.Stdout, "Created %s user %s (id %d)\n", user.Type, user.UserName, user.ID)
	return nil
}
