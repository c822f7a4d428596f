// Command finctl prints reports over the data of one account.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"finora/internal/config"
	"finora/internal/models"
	"finora/internal/storage"

	"github.com/google/subcommands"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("finctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	commander := subcommands.NewCommander(fs, "finctl")
	commander.Output = stdout
	commander.Error = stderr
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	o := output{out: stdout, errOut: stderr}
	commander.Register(&summaryCmd{output: o}, "reports")
	commander.Register(&snowballCmd{output: o}, "reports")
	commander.Register(&lessonsCmd{output: o}, "reports")

	if err := fs.Parse(args); err != nil {
		return int(subcommands.ExitUsageError)
	}
	return int(commander.Execute(context.Background()))
}

// account selects the user a report is about.
type account struct {
	email  string
	dbPath string
}

func (a *account) SetFlags(f *flag.FlagSet) {
	f.StringVar(&a.email, "email", "", "Email of the account to report on")
	f.StringVar(&a.dbPath, "db", config.DefaultDBPath, "Path to database file")
}

// open returns the database and the selected user. DB_PATH overrides the
// default database path.
func (a *account) open(ctx context.Context) (*storage.DB, *models.User, error) {
	if a.email == "" {
		return nil, nil, fmt.Errorf("missing required flag: -email")
	}
	path := a.dbPath
	if env := os.Getenv("DB_PATH"); env != "" && path == config.DefaultDBPath {
		path = env
	}

	db, err := storage.NewDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	user, err := db.GetUserByEmail(ctx, a.email)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("account %s: %w", a.email, err)
	}
	return db, user, nil
}
