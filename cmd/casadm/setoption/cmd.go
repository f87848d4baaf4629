package setoption

import (
	"context"
	"fmt"
	"slices"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/casdb"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/urfave/cli/v3"
)

var knownOptions = []string{
	cas.OptionExpiration,
	cas.OptionAllowReuse,
	cas.OptionAttributes,
}

var Cmd = &cli.Command{
	Name:  "set-option",
	Usage: "Persist a site-wide option",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Usage:    "Path to the SQLite database",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "name",
			Usage:    "Option name (expiration, allow_ticket_reuse, attributes)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "value",
			Usage:    "Option value",
			Required: true,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		name := cmd.String("name")
		if !slices.Contains(knownOptions, name) {
			return fmt.Errorf("unknown option %q (known: %v)", name, knownOptions)
		}

		logger := logging.Noop()
		db, err := casdb.New(casdb.Config{DSN: cmd.String("db"), Logger: logger})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := casdb.Query.SetOption(ctx, db, name, cmd.String("value")); err != nil {
			return fmt.Errorf("failed to set option: %w", err)
		}

		fmt.Printf("Set %s = %s\n", name, cmd.String("value"))
		return nil
	},
}
