package setup

import (
	"context"

	"github.com/urfave/cli/v3"
)

var Cmd = &cli.Command{
	Name:  "setup",
	Usage: "Setup the CAS database",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "db",
			Usage: "Path to SQLite database",
			Value: "cas.db",
		},
		&cli.IntFlag{
			Name:  "expiration",
			Usage: "Ticket lifetime in seconds",
			Value: 30,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return Run(ctx, newConfig(cmd))
	},
}
