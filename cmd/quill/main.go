package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "quill [command] [flags]",
	Short: "Quill: a small blogging API and its command line client",
	Long: `Quill serves a JSON API for users, posts and comments.

Run without a command to start the server. The client commands talk to a
running server; the session they create is kept in the user config dir.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serverURL string

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "Quill server URL (default from saved session or http://localhost:8080)")
	rootCmd.AddCommand(serveCmd, registerCmd, loginCmd, statusCmd, postCmd, commentCmd, readCmd, deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgHiRed, color.Bold).Fprintf(os.Stderr, "Error: ")
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
