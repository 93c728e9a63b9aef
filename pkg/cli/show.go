package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
	"github.com/urfave/cli/v3"
)

func showCommand() *cli.Command {
	var (
		cfg      config
		recordID model.RecordID
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "record-id",
			Aliases:     []string{"id"},
			Usage:       "Memory record ID to show",
			Sources:     cli.EnvVars("RECALL_RECORD_ID"),
			Destination: (*string)(&recordID),
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "show",
		Usage: "Show detailed information of a specific memory record",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			record, err := repo.GetRecord(ctx, recordID)
			if err != nil {
				return goerr.Wrap(err, "failed to get record")
			}

			data, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal record")
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", string(data))
			return nil
		},
	}
}
