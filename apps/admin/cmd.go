package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/prajyots60/myskill-agenda/core"
	"github.com/prajyots60/myskill-agenda/core/timeline"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db    *sqlx.DB
	conf  *core.Config
	clock core.Clock
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate - apply pending database migrations")
	fmt.Println("  seed -owner NAME - load demo sessions and exams owned by NAME")
	fmt.Println("  token -viewer ID -email EMAIL [-creator] - sign a dev JWT for a viewer")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	seedOwner := seedCmd.String("owner", "Demo Creator", "The display name owning the demo entries.")

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenViewer := tokenCmd.String("viewer", "", "The viewer ID to sign for.")
	tokenEmail := tokenCmd.String("email", "", "The viewer's email.")
	tokenCreator := tokenCmd.Bool("creator", false, "Sign a creator token instead of a student one.")

	switch args[1] {
	case "migrate":
		return cli.migrate()
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.seed(*seedOwner)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenViewer == "" || *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		role := timeline.RoleStudent
		if *tokenCreator {
			role = timeline.RoleCreator
		}
		return cli.token(*tokenViewer, *tokenEmail, role)
	default:
		cli.printUsage()
		return errHelp
	}
}
