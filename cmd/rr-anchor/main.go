package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

const (
	version = "0.1.0-dev"
	appName = "rr-anchor"
)

func main() {
	ctl := newApp()
	if err := ctl.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp creates the rr-anchor CLI with all commands included.
func newApp() *cli.App {
	ctl := cli.NewApp()
	ctl.Name = appName
	ctl.Version = version
	ctl.Usage = "Manage IPFS anchors in the rr-anchor registry"
	ctl.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "backend, b",
			Usage: "store backend (memory, bolt, sqlite); overrides ANCHOR_STORE_BACKEND",
		},
		cli.StringFlag{
			Name:  "store, s",
			Usage: "store file path; overrides ANCHOR_STORE_PATH",
		},
	}
	ctl.Commands = newCommands()
	return ctl
}
