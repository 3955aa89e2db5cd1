// Package main is the entry point for the Travelsia API.
// Its sole responsibility is wiring dependencies together and dispatching to
// the serve and migrate commands. No business logic belongs here.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "travelsia-api",
		Version: version,
		Short:   "Travel itinerary planning API",
		Long: `travelsia-api serves the itinerary planning HTTP API and manages its
Postgres schema.

Configuration is read from the environment (and a .env file when present).
DATABASE_URL is required by every command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}
