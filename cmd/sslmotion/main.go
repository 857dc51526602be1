// Package main is the sslmotion command line tool.
package main

import (
	"context"
	"os"
	"os/signal"

	"go.viam.com/sslmotion/cli"
	"go.viam.com/sslmotion/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		logging.Global().Error(err)
		stop()
		os.Exit(1)
	}
}
