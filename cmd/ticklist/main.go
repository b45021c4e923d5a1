package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/andrebq/ticklist/cmd/ticklist/serve"
	"github.com/andrebq/ticklist/cmd/ticklist/user"
	"github.com/andrebq/ticklist/internal/logutil"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	// missing .env is fine, the environment itself is enough
	godotenv.Load()
	app := &cli.App{
		Name:  "ticklist",
		Usage: "A multi-user todo list served over HTTP",
		Commands: []*cli.Command{
			serve.Cmd(),
			user.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = logutil.WithLogger(ctx, log.Logger)
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
	}
}
