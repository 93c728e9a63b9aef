package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/service/mcp"
	"github.com/specei/recall/pkg/usecase/recall"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, classifierFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve memory search and grounded answering as MCP tools over stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			pipeline, repo, err := cfg.newPipeline(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			server := mcp.NewServer(recall.NewScorer(repo), pipeline, Version)
			if err := server.Run(ctx); err != nil {
				return goerr.Wrap(err, "mcp server exited with error")
			}

			return nil
		},
	}
}
