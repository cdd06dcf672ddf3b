package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MichaelCrowe11/CroweLM/internal/nim"
	"github.com/MichaelCrowe11/CroweLM/internal/pipeline"
	"github.com/MichaelCrowe11/CroweLM/internal/target"
	"github.com/spf13/cobra"
)

var foldCmd = &cobra.Command{
	Use:   "fold",
	Short: "Predict a protein structure with ESMFold",
	Long:  "Predict the 3-D structure of an amino-acid sequence. The PDB text is printed to stdout unless --output names a file.",
	RunE:  runFoldCmd,
}

var (
	foldSequence string
	foldOutput   string
)

func init() {
	foldCmd.Flags().StringVarP(&foldSequence, "sequence", "s", "", "Amino-acid sequence to fold (required)")
	foldCmd.Flags().StringVarP(&foldOutput, "output", "o", "", "Write the PDB to this file instead of stdout")

	_ = foldCmd.MarkFlagRequired("sequence")

	rootCmd.AddCommand(foldCmd)
}

func runFoldCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	sequence := target.NormalizeSequence(foldSequence)
	if sequence == "" {
		return fmt.Errorf("sequence is empty after normalization")
	}
	if len(sequence) > pipeline.DefaultFoldCeiling {
		return fmt.Errorf("sequence length %d exceeds the %d-residue limit", len(sequence), pipeline.DefaultFoldCeiling)
	}

	client, err := nim.NewClient(nim.ConfigFromEnv())
	if err != nil {
		return err
	}

	pdb, err := client.PredictStructure(ctx, sequence)
	if err != nil {
		return fmt.Errorf("structure prediction failed: %w", err)
	}

	if foldOutput == "" {
		fmt.Fprint(os.Stdout, pdb)
		return nil
	}

	if err := os.WriteFile(foldOutput, []byte(pdb), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", foldOutput, err)
	}
	fmt.Fprintf(os.Stdout, "Predicted %d residues -> %s (%d bytes)\n", len(sequence), foldOutput, len(pdb))
	return nil
}
