package main

import (
	"encoding/json"
	"fmt"

	"github.com/blackandwhiteonline/storefront/internal/app"
	"github.com/blackandwhiteonline/storefront/internal/config"
	"github.com/blackandwhiteonline/storefront/internal/orders"
	"github.com/blackandwhiteonline/storefront/pkg/logger"
	"github.com/urfave/cli/v2"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply the SQL schema for the sqlite or postgres backend",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("env-file"))
			if err != nil {
				return err
			}
			st, err := app.OpenSQL(cfg.Storage)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.RunMigrations(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "migrations applied (%s)\n", st.Dialect())
			return nil
		},
	}
}

func ordersCommand() *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "print a shopper's most recent orders as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "shopper", Usage: "shopper id", Required: true},
			&cli.IntFlag{Name: "limit", Usage: "number of orders, newest first", Value: 10},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("env-file"))
			if err != nil {
				return err
			}
			log := logger.New(c.App.ErrWriter, cfg.LogLevel, cfg.LogFormat)

			st, closeFn, err := app.OpenStorage(c.Context, cfg.Storage, log)
			if err != nil {
				return err
			}
			defer closeFn(c.Context)

			list, err := orders.NewService(st, log).For(c.String("shopper")).ListRecent(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		},
	}
}
