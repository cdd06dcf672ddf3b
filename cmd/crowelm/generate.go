package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MichaelCrowe11/CroweLM/internal/config"
	"github.com/MichaelCrowe11/CroweLM/internal/nim"
	"github.com/MichaelCrowe11/CroweLM/internal/observability"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate candidate molecules with MolMIM",
	Long:  "Generate QED-optimized candidate molecules from a seed SMILES. Generation parameters come from a named profile; --num and --seed override the profile values.",
	RunE:  runGenerateCmd,
}

var (
	generateNum          int
	generateSeed         string
	generateProfile      string
	generateProfilesFile string
)

func init() {
	generateCmd.Flags().IntVarP(&generateNum, "num", "n", 0, "Number of molecules to request")
	generateCmd.Flags().StringVar(&generateSeed, "seed", "", "Seed SMILES (defaults to the profile seed)")
	generateCmd.Flags().StringVar(&generateProfile, "profile", "", "Named generation profile")
	generateCmd.Flags().StringVar(&generateProfilesFile, "profiles-file", "", "Path to a YAML file with extra generation profiles")

	rootCmd.AddCommand(generateCmd)
}

func runGenerateCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	profile, err := config.GetProfile(generateProfile, generateProfilesFile)
	if err != nil {
		return err
	}

	req := profile.Request()
	if generateNum > 0 {
		req.NumMolecules = generateNum
	}
	if generateSeed != "" {
		req.Seed = generateSeed
	}

	client, err := nim.NewClient(nim.ConfigFromEnv())
	if err != nil {
		return err
	}

	candidates, err := client.GenerateMolecules(ctx, req)
	if err != nil {
		return fmt.Errorf("molecule generation failed: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintCandidates(candidates)
	return nil
}
