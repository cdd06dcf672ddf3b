package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/MichaelCrowe11/CroweLM/internal/nim"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the NVIDIA NIM services",
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	client, err := nim.NewClient(nim.ConfigFromEnv())
	if err != nil {
		return err
	}

	health := client.CheckHealth(ctx)

	fmt.Fprintf(os.Stdout, "LLM API:     %s\n", statusWord(health.LLMAPI))
	fmt.Fprintf(os.Stdout, "Biology API: %s\n", statusWord(health.BiologyAPI))
	if len(health.Services) > 0 {
		fmt.Fprintf(os.Stdout, "Services:    %s\n", strings.Join(health.Services, ", "))
	}

	if !health.LLMAPI || !health.BiologyAPI {
		return fmt.Errorf("one or more NIM services are unreachable")
	}
	return nil
}

func statusWord(up bool) string {
	if up {
		return "ok"
	}
	return "unreachable"
}
