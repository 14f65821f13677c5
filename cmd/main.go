package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-task-manager/internal/app"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "task-manager",
	Short: "Task manager REST API",
	Run: func(*cobra.Command, []string) {
		app.Serve()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		app.Serve()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the storage schema",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		app.Migrate()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account, task statuses and labels",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		app.Seed()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}
