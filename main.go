package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/specei/recall/pkg/cli"
)

func main() {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		cli.Version = info.Main.Version
	}

	if err := cli.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "recall:", err.Message)
		os.Exit(err.Code)
	}
}
