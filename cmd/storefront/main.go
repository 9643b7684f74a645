package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "storefront",
		Usage: "cart, checkout and order history service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "optional dotenv file loaded before the STOREFRONT_* environment",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			ordersCommand(),
		},
	}
}
