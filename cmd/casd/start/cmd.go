package start

import (
	"context"

	"github.com/urfave/cli/v3"
)

var Cmd = &cli.Command{
	Name:  "start",
	Usage: "Start the CAS server",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "db",
			Usage: "Path to SQLite database",
			Value: "cas.db",
		},
		&cli.StringFlag{
			Name:     "secret",
			Usage:    "Site-wide ticket signing secret",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "listen",
			Usage: "HTTP listen address (e.g. :8080)",
			Value: ":8080",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Ticket store DSN: memory, sqlite, or leveldb://path",
			Value: "sqlite",
		},
		&cli.StringFlag{
			Name:  "auth-url",
			Usage: "External credential UI users are sent to for authentication",
			Value: "/auth",
		},
		&cli.StringFlag{
			Name:  "home-url",
			Usage: "Redirect target when no service is given",
			Value: "/",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return Run(ctx, newConfig(cmd))
	},
}
