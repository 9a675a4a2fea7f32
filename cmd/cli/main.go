package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taskdesk/internal/client/cli"
)

// Set with -ldflags "-X main.buildVersion=... -X main.buildDate=...".
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	streams := cli.DefaultStreams()
	root := cli.NewRootCommand(cli.NewApp, streams)
	root.Version = fmt.Sprintf("%s (built %s)", buildVersion, buildDate)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(streams.Err, "Error:", err)
		stop()
		os.Exit(1)
	}
}
