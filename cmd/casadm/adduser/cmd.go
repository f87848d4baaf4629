package adduser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rizesql/cas/internal/casdb"
	"github.com/rizesql/cas/internal/directory"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/urfave/cli/v3"
)

var Cmd = &cli.Command{
	Name:  "add-user",
	Usage: "Add a new user to the directory",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Usage:    "Path to the SQLite database",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "login",
			Usage:    "User login name",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Usage:    "User password",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "attributes",
			Usage: `JSON object of user attributes (e.g. '{"email":"alice@example.org"}')`,
			Value: "{}",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		login := cmd.String("login")
		password := cmd.String("password")
		attributes := cmd.String("attributes")

		var attrs map[string]string
		if err := json.Unmarshal([]byte(attributes), &attrs); err != nil {
			return fmt.Errorf("invalid attributes: %w", err)
		}

		logger := logging.Noop()
		db, err := casdb.New(casdb.Config{DSN: cmd.String("db"), Logger: logger})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		created, err := casdb.Query.CreateUser(ctx, db, casdb.CreateUserParams{
			Login:        login,
			PasswordHash: directory.HashPassword(login, password),
			Attributes:   attributes,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("Created user: %s\n", created.Login)
		return nil
	},
}
