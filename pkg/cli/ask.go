package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var (
		cfg   config
		owner string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Aliases:     []string{"u"},
			Usage:       "Owner whose memories are queried",
			Sources:     cli.EnvVars("RECALL_OWNER_ID"),
			Destination: &owner,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, classifierFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer one question from captured memories",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if query == "" {
				return goerr.New("question is required")
			}

			ctx = cfg.setupLogging(ctx)

			pipeline, repo, err := cfg.newPipeline(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			result, err := pipeline.Ask(ctx, model.OwnerID(owner), query)
			if err != nil {
				return goerr.Wrap(err, "failed to answer question")
			}

			if !result.Intent.IsMemoryQuery {
				fmt.Fprintf(c.Root().Writer, "Not a memory question. Nothing was retrieved.\n")
				return nil
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", result.Answer)
			return nil
		},
	}
}
