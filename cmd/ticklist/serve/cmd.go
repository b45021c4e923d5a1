package serve

import (
	"fmt"

	"github.com/andrebq/ticklist/api"
	"github.com/andrebq/ticklist/auth"
	authapi "github.com/andrebq/ticklist/auth/api"
	"github.com/andrebq/ticklist/internal/cmdflags"
	"github.com/andrebq/ticklist/internal/httpserver"
	"github.com/andrebq/ticklist/store"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	port := 3000
	dbPath := "ticklist.db"
	secretEnvVarName := auth.SecretEnvVar
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the ticklist HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "port",
				Usage:       "Port to listen on",
				Value:       port,
				Destination: &port,
				EnvVars:     []string{"PORT"},
			},
			cmdflags.Database(&dbPath),
			cmdflags.SecretEnvVar(&secretEnvVarName),
		},
		Action: func(ctx *cli.Context) error {
			secret, err := auth.SecretFromEnv(secretEnvVarName)
			if err != nil {
				return err
			}
			s, err := store.Open(ctx.Context, dbPath, true)
			if err != nil {
				return err
			}
			defer s.Close()
			issuer := auth.NewTokenIssuer(secret)
			flow := auth.NewFlow(s, auth.NewHasher(), issuer)
			realm := authapi.NewRealm(issuer, authapi.InMemoryTokenCache())
			handler := api.AsHandler(flow, s, realm)
			return httpserver.Serve(ctx.Context, fmt.Sprintf(":%d", port), handler)
		},
	}
}
