// Package main is the entry point for the todo command-line client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gotodo/gotodo/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.App().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
