package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/MichaelCrowe11/CroweLM/internal/artifacts"
	"github.com/MichaelCrowe11/CroweLM/internal/config"
	"github.com/MichaelCrowe11/CroweLM/internal/llm"
	"github.com/MichaelCrowe11/CroweLM/internal/nim"
	"github.com/MichaelCrowe11/CroweLM/internal/pipeline"
	"github.com/MichaelCrowe11/CroweLM/internal/target"
	"github.com/MichaelCrowe11/CroweLM/internal/viz"
)

// nimConfig builds NIM connection settings from the environment, letting
// merged config values override individual fields.
func nimConfig(cfg config.Config) nim.Config {
	nimCfg := nim.ConfigFromEnv()
	if cfg.APIKey != "" {
		nimCfg.APIKey = cfg.APIKey
	}
	if cfg.BiologyURL != "" {
		nimCfg.BiologyURL = cfg.BiologyURL
	}
	if cfg.LLMURL != "" {
		nimCfg.LLMURL = cfg.LLMURL
	}
	if cfg.TimeoutSeconds > 0 {
		nimCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return nimCfg
}

// chatConfig picks the provider configuration and applies the CROWELM_*
// model overrides on top of it.
func chatConfig(cfg config.Config) *llm.Config {
	var base *llm.Config
	if cfg.Provider == string(llm.ProviderGemini) {
		base = llm.DefaultGeminiConfig()
	} else {
		base = llm.DefaultNemotronConfig()
		if cfg.LLMURL != "" {
			base.BaseURL = cfg.LLMURL
		}
	}

	if model := os.Getenv("CROWELM_MODEL_NAME"); model != "" {
		base = base.WithModel(llm.TierStandard, model)
	}
	if raw := os.Getenv("CROWELM_TEMPERATURE"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 32); err == nil {
			base.Temperature = float32(v)
		}
	}
	if raw := os.Getenv("CROWELM_MAX_TOKENS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			base.MaxTokens = v
		}
	}
	if cfg.TimeoutSeconds > 0 {
		base.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return base
}

// chatClient builds the assessment/chat client for the configured
// provider. Nemotron reuses the NVIDIA key; Gemini needs its own.
func chatClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	apiKey := cfg.APIKey
	if cfg.Provider == string(llm.ProviderGemini) {
		apiKey = cfg.GeminiAPIKey
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required when the provider is gemini")
		}
	}
	return llm.NewClient(ctx, chatConfig(cfg), apiKey)
}

// buildDeps assembles the pipeline collaborators described by cfg. The
// returned chat client backs the assessor and must be closed by the
// caller. Object storage is attached only when the CROWELM_S3_* variables
// are set and the bucket is reachable.
func buildDeps(ctx context.Context, cfg config.Config) (pipeline.Deps, llm.Client, error) {
	nimClient, err := nim.NewClient(nimConfig(cfg))
	if err != nil {
		return pipeline.Deps{}, nil, err
	}

	chat, err := chatClient(ctx, cfg)
	if err != nil {
		return pipeline.Deps{}, nil, err
	}

	deps := pipeline.Deps{
		Resolver:  target.NewResolver(target.DefaultConfig()),
		Folder:    nimClient,
		Generator: nimClient,
		Assessor:  llm.NewAssessor(chat),
		Writer:    artifacts.NewWriter(cfg.OutputDir),
		Renderer:  viz.NewRenderer(),
	}

	if storeCfg := artifacts.ObjectStoreConfigFromEnv(); storeCfg.Enabled() {
		uploader, err := artifacts.NewUploader(storeCfg)
		if err != nil {
			log.Printf("Warning: object storage disabled: %v", err)
		} else if err := uploader.EnsureBucket(ctx); err != nil {
			log.Printf("Warning: object storage disabled: %v", err)
		} else {
			deps.Uploader = uploader
		}
	}

	return deps, chat, nil
}
