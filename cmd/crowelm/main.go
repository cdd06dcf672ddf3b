// Package main provides the entry point for the CroweLM drug discovery CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crowelm",
	Short: "CroweLM Drug Discovery Pipeline",
	Long:  "CroweLM turns a biological target or raw protein sequence into a discovery report: target resolution, structure prediction, candidate molecule generation, AI assessment, and persisted artifacts.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
