package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/specei/recall/pkg/model"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
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
		Name:  "chat",
		Usage: "Interactive question-answering over captured memories",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			pipeline, repo, err := cfg.newPipeline(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize prompt")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Ask about your captured memories. Type 'exit' to quit.\n")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				query := strings.TrimSpace(line)
				if query == "" {
					continue
				}
				if query == "exit" || query == "quit" {
					break
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " recalling..."
				sp.Start()

				result, err := pipeline.Ask(ctx, model.OwnerID(owner), query)
				sp.Stop()
				if err != nil {
					return goerr.Wrap(err, "failed to answer question")
				}

				if !result.Intent.IsMemoryQuery {
					fmt.Fprintf(c.Root().Writer, "(not a memory question)\n")
					continue
				}

				fmt.Fprintf(c.Root().Writer, "%s\n", result.Answer)
			}

			fmt.Fprintf(c.Root().Writer, "\nBye\n")
			return nil
		},
	}
}
