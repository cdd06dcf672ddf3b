package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MichaelCrowe11/CroweLM/internal/config"
	"github.com/MichaelCrowe11/CroweLM/internal/llm"
	"github.com/MichaelCrowe11/CroweLM/internal/observability"
	"github.com/MichaelCrowe11/CroweLM/internal/target"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the chat model a scientific question",
	Long:  "Send a free-form question to the configured chat model, or run a druggability assessment for a resolved target with --target and --assess.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChatCmd,
}

var (
	chatTarget   string
	chatAssess   bool
	chatModel    string
	chatProvider string
)

func init() {
	chatCmd.Flags().StringVarP(&chatTarget, "target", "t", "", "Target to assess (requires --assess)")
	chatCmd.Flags().BoolVar(&chatAssess, "assess", false, "Run a druggability assessment for --target")
	chatCmd.Flags().StringVar(&chatModel, "model", "", "Model tier: lite, standard, or advanced")
	chatCmd.Flags().StringVar(&chatProvider, "provider", "", "Chat provider: nemotron or gemini")

	rootCmd.AddCommand(chatCmd)
}

func runChatCmd(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	if chatAssess && chatTarget == "" {
		return fmt.Errorf("--assess requires --target")
	}
	if !chatAssess && len(args) == 0 {
		return fmt.Errorf("provide a message argument, or --target with --assess")
	}

	tier := llm.TierStandard
	if chatModel != "" {
		switch llm.ModelTier(chatModel) {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
			tier = llm.ModelTier(chatModel)
		default:
			return fmt.Errorf("unknown model tier %q (expected lite, standard, or advanced)", chatModel)
		}
	}

	cfg := config.FromEnv()
	if chatProvider != "" {
		cfg.Provider = chatProvider
	}

	client, err := chatClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if chatAssess {
		record := target.NewResolver(target.DefaultConfig()).Resolve(ctx, chatTarget)
		assessment, err := llm.Assess(ctx, client, record.Subject())
		if err != nil {
			return err
		}
		observability.NewPrinter(os.Stdout).PrintAssessment(assessment)
		return nil
	}

	response, err := client.Complete(ctx, args[0], tier)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, response)
	return nil
}
