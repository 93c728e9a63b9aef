package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var (
		cfg   config
		owner string
		limit int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Aliases:     []string{"u"},
			Usage:       "Owner whose memory records are listed",
			Sources:     cli.EnvVars("RECALL_OWNER_ID"),
			Destination: &owner,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of records to list",
			Value:       100,
			Sources:     cli.EnvVars("RECALL_LIST_LIMIT"),
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List indexed memory records of an owner",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			records, err := repo.ListRecords(ctx, model.OwnerID(owner))
			if err != nil {
				return goerr.Wrap(err, "failed to list records")
			}

			if int64(len(records)) > limit {
				records = records[:limit]
			}

			for _, r := range records {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\t%s\n",
					r.ID, r.CapturedAt.UTC().Format(time.RFC3339), r.Modality, r.FileName)
			}

			return nil
		},
	}
}
