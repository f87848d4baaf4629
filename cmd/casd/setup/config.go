package setup

import "github.com/urfave/cli/v3"

type Config struct {
	DBPath     string
	Expiration int64
}

func newConfig(cmd *cli.Command) Config {
	return Config{
		DBPath:     cmd.String("db"),
		Expiration: int64(cmd.Int("expiration")),
	}
}
