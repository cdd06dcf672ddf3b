package main

import (
	"context"
	"fmt"
	"log"

	"github.com/MichaelCrowe11/CroweLM/internal/config"
	"github.com/MichaelCrowe11/CroweLM/internal/db"
	"github.com/MichaelCrowe11/CroweLM/internal/pipeline"
	"github.com/MichaelCrowe11/CroweLM/internal/server"
	"github.com/MichaelCrowe11/CroweLM/internal/types"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for running the discovery pipeline.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.FromEnv()

	deps, chat, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer chat.Close()

	// The pool serves both run persistence and the /runs query endpoints.
	// Without DATABASE_URL the server runs stateless.
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: failed to connect to database: %v. Continuing without database persistence.", err)
			database = nil
		} else if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			log.Printf("Warning: failed to prepare database schema: %v. Continuing without database persistence.", err)
			database = nil
		} else {
			defer database.Close()
			deps.Store = database
		}
	}

	profile, err := config.GetProfile(cfg.Profile, cfg.ProfilesFile)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port: servePort,
		Deps: deps,
		Options: pipeline.Options{
			Run:         types.RunOptions{OutputDir: cfg.OutputDir},
			Generation:  profile.Request(),
			FoldCeiling: cfg.FoldCeiling,
		},
		Chat: chat,
		DB:   database,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
