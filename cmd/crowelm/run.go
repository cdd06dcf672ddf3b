package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/MichaelCrowe11/CroweLM/internal/config"
	"github.com/MichaelCrowe11/CroweLM/internal/db"
	"github.com/MichaelCrowe11/CroweLM/internal/pipeline"
	"github.com/MichaelCrowe11/CroweLM/internal/types"
	"github.com/spf13/cobra"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full discovery pipeline end-to-end",
	Long: `Orchestrates the discovery pipeline: target resolution -> structure prediction -> molecule generation -> assessment -> report -> visualization.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values. With no target or sequence the pipeline runs a demo against BRAF kinase (P15056).`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath      string
	runTarget          string
	runSequence        string
	runGenerateLigands bool
	runNumLigands      int
	runRender          bool
	runOutputDir       string
	runProfile         string
	runProfilesFile    string
	runSeed            string
	runProvider        string
	runAPIKey          string
	runVerbose         bool
	runDatabaseURL     string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runTarget, "target", "t", "", "Gene symbol or UniProt accession (mutually exclusive with --sequence)")
	runCommand.Flags().StringVar(&runSequence, "sequence", "", "Raw amino-acid sequence (mutually exclusive with --target)")
	runCommand.Flags().BoolVar(&runGenerateLigands, "generate-ligands", true, "Generate candidate ligands with MolMIM")
	runCommand.Flags().IntVar(&runNumLigands, "num-ligands", 0, "Number of candidate molecules to request")
	runCommand.Flags().BoolVar(&runRender, "render", false, "Write HTML/SVG visualizations alongside the report")
	runCommand.Flags().StringVarP(&runOutputDir, "output", "o", "", "Artifact output directory (default ./pipeline_results)")
	runCommand.Flags().StringVar(&runProfile, "profile", "", "Named generation profile")
	runCommand.Flags().StringVar(&runProfilesFile, "profiles-file", "", "Path to a YAML file with extra generation profiles")
	runCommand.Flags().StringVar(&runSeed, "seed", "", "Seed SMILES for molecule generation")
	runCommand.Flags().StringVar(&runProvider, "provider", "", "Assessment provider: nemotron or gemini")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress information")

	// API key can be passed as a flag, or read from env var NVIDIA_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "NVIDIA API key (optional, defaults to NVIDIA_API_KEY env var)")

	// Database URL for run persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("target") {
		cfg.Target = runTarget
	}
	if cmd.Flags().Changed("sequence") {
		cfg.Sequence = runSequence
	}
	if cmd.Flags().Changed("num-ligands") {
		cfg.CandidateCount = runNumLigands
	}
	if cmd.Flags().Changed("render") {
		cfg.Render = runRender
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputDir = runOutputDir
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile = runProfile
	}
	if cmd.Flags().Changed("profiles-file") {
		cfg.ProfilesFile = runProfilesFile
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = runSeed
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider = runProvider
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Step 3: Fill remaining gaps from the environment
	cfg = cfg.MergeWithDefaults(config.FromEnv())

	// Step 4: Validate inputs. With neither a target nor a sequence the
	// pipeline runs the demo target.
	if cfg.Target != "" && cfg.Sequence != "" {
		return fmt.Errorf("--target and --sequence are mutually exclusive; provide only one")
	}
	if cfg.Target == "" && cfg.Sequence == "" {
		fmt.Fprintln(os.Stdout, "Running demo with BRAF kinase (P15056)...")
		cfg.Target = "P15056"
	}

	// Step 5: Resolve the generation profile
	profile, err := config.GetProfile(cfg.Profile, cfg.ProfilesFile)
	if err != nil {
		return err
	}

	// Step 6: Build collaborators
	deps, chat, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer chat.Close()

	// Database persistence is optional; a failed connection downgrades
	// the run to file artifacts only.
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: failed to connect to database: %v. Continuing without database persistence.", err)
		} else if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			log.Printf("Warning: failed to prepare database schema: %v. Continuing without database persistence.", err)
		} else {
			defer database.Close()
			deps.Store = database
		}
	}

	opts := pipeline.Options{
		Run: types.RunOptions{
			GenerateCandidates: runGenerateLigands,
			CandidateCount:     cfg.CandidateCount,
			RenderArtifacts:    cfg.Render,
			OutputDir:          cfg.OutputDir,
		},
		Generation:  profile.Request(),
		FoldCeiling: cfg.FoldCeiling,
		Seed:        cfg.Seed,
		Verbose:     cfg.Verbose,
	}

	p := pipeline.New(deps, opts)

	var result *pipeline.Result
	if cfg.Sequence != "" {
		result, err = p.RunSequence(ctx, cfg.Sequence)
	} else {
		result, err = p.Run(ctx, cfg.Target)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout)
	if path, ok := result.Artifacts[types.ArtifactReport]; ok {
		fmt.Fprintf(os.Stdout, "Report: %s\n", path)
	}
	if path, ok := result.Artifacts[types.ArtifactRunDump]; ok {
		fmt.Fprintf(os.Stdout, "Run dump: %s\n", path)
	}

	return nil
}
