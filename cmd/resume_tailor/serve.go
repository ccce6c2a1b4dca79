package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  "Start an HTTP server that exposes REST endpoints for running the tailoring pipeline and fetching run artifacts.",
	RunE:  runServe,
}

var (
	servePort          int
	serveResume        string
	serveTemplate      string
	serveOutputDir     string
	serveMaxIterations int
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVarP(&serveResume, "resume", "r", "resume.json", "Path to resume JSON file used for tailoring requests")
	serveCmd.Flags().StringVarP(&serveTemplate, "template", "t", config.DefaultTemplate, "Path to LaTeX template")
	serveCmd.Flags().StringVar(&serveOutputDir, "output-dir", config.DefaultOutputDir, "Directory for generated artifacts")
	serveCmd.Flags().IntVar(&serveMaxIterations, "max-iterations", config.DefaultMaxIterations, "Page-fit optimization budget")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Println("Warning: GEMINI_API_KEY not set, AI tailoring disabled")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("Warning: DATABASE_URL not set, runs will not be persisted")
	}

	cfg := server.Config{
		Port:          servePort,
		DatabaseURL:   databaseURL,
		APIKey:        apiKey,
		ResumePath:    serveResume,
		TemplatePath:  serveTemplate,
		OutputDir:     serveOutputDir,
		MaxIterations: serveMaxIterations,
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
