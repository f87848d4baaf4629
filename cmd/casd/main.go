package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rizesql/cas/cmd/casd/setup"
	"github.com/rizesql/cas/cmd/casd/start"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "casd",
		Usage: "Central Authentication Service server",
		Commands: []*cli.Command{
			setup.Cmd,
			start.Cmd,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
