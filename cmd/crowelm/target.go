package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MichaelCrowe11/CroweLM/internal/observability"
	"github.com/MichaelCrowe11/CroweLM/internal/target"
	"github.com/spf13/cobra"
)

var targetCmd = &cobra.Command{
	Use:   "target IDENTIFIER",
	Short: "Resolve a target identifier and print its record",
	Long:  "Resolve a gene symbol or UniProt accession against UniProt, ChEMBL, and PubMed, and print the aggregated record. Sources that fail are listed on the record rather than aborting resolution.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTargetCmd,
}

func init() {
	rootCmd.AddCommand(targetCmd)
}

func runTargetCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	resolver := target.NewResolver(target.DefaultConfig())
	record := resolver.Resolve(ctx, args[0])

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintTargetRecord(record)

	if len(record.FailedSources) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d source(s) failed during resolution\n", len(record.FailedSources))
	}
	return nil
}
