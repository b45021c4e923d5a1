package user

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/andrebq/ticklist/auth"
	"github.com/andrebq/ticklist/internal/cmdflags"
	"github.com/andrebq/ticklist/internal/logutil"
	"github.com/andrebq/ticklist/store"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	dbPath := "ticklist.db"
	return &cli.Command{
		Name:  "user",
		Usage: "Manage users directly against the database, without going through the API",
		Flags: []cli.Flag{
			cmdflags.Database(&dbPath),
		},
		Subcommands: []*cli.Command{
			registerCmd(&dbPath),
		},
	}
}

func registerCmd(dbPath *string) *cli.Command {
	var username string
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new user (password is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the user to register",
				Destination: &username,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			sc := bufio.NewScanner(os.Stdin)
			if !sc.Scan() {
				return sc.Err()
			}
			password := strings.TrimSpace(sc.Text())
			if len(password) == 0 {
				return errors.New("missing password from stdin")
			}
			s, err := store.Open(ctx.Context, *dbPath, true)
			if err != nil {
				return err
			}
			defer s.Close()
			// the flow only issues tokens on login, registration does
			// not need a signing secret
			flow := auth.NewFlow(s, auth.NewHasher(), nil)
			p, err := flow.Register(ctx.Context, username, password)
			if err != nil {
				return err
			}
			log := logutil.GetOrDefault(ctx.Context)
			log.Info().Int64("user.id", p.ID).Str("user.name", p.Username).Msg("User registered")
			return nil
		},
	}
}
