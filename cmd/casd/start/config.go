package start

import "github.com/urfave/cli/v3"

type Config struct {
	DBPath   string
	Secret   string
	Listen   string
	StoreDSN string
	AuthURL  string
	HomeURL  string
}

func newConfig(cmd *cli.Command) Config {
	return Config{
		DBPath:   cmd.String("db"),
		Secret:   cmd.String("secret"),
		Listen:   cmd.String("listen"),
		StoreDSN: cmd.String("store"),
		AuthURL:  cmd.String("auth-url"),
		HomeURL:  cmd.String("home-url"),
	}
}
