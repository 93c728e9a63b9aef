package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
	"github.com/specei/recall/pkg/usecase/ingest"
	"github.com/urfave/cli/v3"
)

func ingestCommand() *cli.Command {
	var (
		cfg      config
		mediaCfg mediaConfig
		owner    string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Aliases:     []string{"u"},
			Usage:       "Owner whose captured media is ingested",
			Sources:     cli.EnvVars("RECALL_OWNER_ID"),
			Destination: &owner,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, mediaFlags(&mediaCfg)...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Analyze pending captured media and index it as memory records",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			analyzer, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			storage, err := mediaCfg.newStorage(ctx)
			if err != nil {
				return err
			}

			source, err := mediaCfg.newMediaSource()
			if err != nil {
				return err
			}

			uc := ingest.New(source, storage, analyzer, repo)
			summary, err := uc.SyncOwner(ctx, model.OwnerID(owner))
			if err != nil {
				return goerr.Wrap(err, "failed to sync media")
			}

			fmt.Fprintf(c.Root().Writer, "Ingested %d of %d media items (%d skipped, %d errors)\n",
				summary.Processed, summary.Total, summary.Skipped, summary.Errors)
			return nil
		},
	}
}
