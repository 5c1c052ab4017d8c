package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/pushopen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}

	// Commands print their own structured errors; only the exit message is left.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code == cli.ExitCommandError {
		fmt.Fprintln(os.Stderr, err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
