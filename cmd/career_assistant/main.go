// Package main provides the entry point for the Career Assistant CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "career_assistant",
	Short:        "Career Assistant CV matching and tailoring",
	Long:         "Career Assistant scores a CV against a job description, lists shared skills and missing keywords, and rewrites the CV toward the role. Run it once from the command line or serve it over HTTP.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
