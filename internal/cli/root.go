// Package cli implements the turnfarm CLI commands.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/turnfarm/internal/config"
	"github.com/rcliao/turnfarm/internal/store"
)

var (
	dbPath  string
	verbose bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "turnfarm",
	Short: "Spend a farming day and account for it",
	Long:  "Runs a farming day against a simulated world: target fights first, then farming turns, with every checkpoint valued and stored in SQLite.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $TURNFARM_DB or ~/.turnfarm/turnfarm.db)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine decisions to stderr")
}

// loadOptions reads the environment and applies the persistent flags.
func loadOptions() config.Options {
	o, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		o.DBPath = dbPath
	}
	if verbose {
		o.Verbose = true
	}
	return o
}

func getDBPath() string {
	return loadOptions().DatabasePath()
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func newLogger(o config.Options) *log.Logger {
	var w io.Writer = io.Discard
	if o.Verbose {
		w = os.Stderr
	}
	return log.New(w, "turnfarm: ", log.Ltime)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
