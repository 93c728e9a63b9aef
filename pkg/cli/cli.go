package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Version is injected at build time.
var Version = "dev"

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:    "recall",
		Usage:   "Memory retrieval and grounded answering for captured experiences",
		Version: Version,
		Commands: []*cli.Command{
			askCommand(),
			chatCommand(),
			ingestCommand(),
			listCommand(),
			showCommand(),
			serveCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
