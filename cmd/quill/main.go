package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/quill/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	cli.ReportError(os.Stderr, err)
	stop()
	os.Exit(cli.GetExitCode(err))
}
