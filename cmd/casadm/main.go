package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rizesql/cas/cmd/casadm/adduser"
	"github.com/rizesql/cas/cmd/casadm/setoption"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "casadm",
		Usage: "CAS server administration",
		Commands: []*cli.Command{
			adduser.Cmd,
			setoption.Cmd,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
