package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kochabx/webpush/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("webpush failed")
		stop()
		os.Exit(1)
	}
}
