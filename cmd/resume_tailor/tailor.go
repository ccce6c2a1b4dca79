package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/pipeline"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor the resume to a job posting and compile a one-page PDF",
	Long: `Rewrites the resume content to match a job posting, renders it through the
LaTeX template, and iteratively shrinks it until the compiled PDF fits on
exactly one page.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runTailor,
}

var (
	tailorConfigPath    string
	tailorJob           string
	tailorJobURL        string
	tailorResume        string
	tailorTemplate      string
	tailorOut           string
	tailorOutputDir     string
	tailorMaxIterations int
	tailorMaxBullets    int
	tailorMaxProjects   int
	tailorNoOptimize    bool
	tailorNoAI          bool
	tailorPreview       bool
	tailorBrowser       bool
	tailorVerbose       bool
	tailorAPIKey        string
	tailorDatabaseURL   string
)

func init() {
	tailorCmd.Flags().StringVar(&tailorConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	tailorCmd.Flags().StringVarP(&tailorJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	tailorCmd.Flags().StringVarP(&tailorResume, "resume", "r", "", "Path to resume JSON file")
	tailorCmd.Flags().StringVarP(&tailorTemplate, "template", "t", "", "Path to LaTeX template")
	tailorCmd.Flags().StringVarP(&tailorOut, "out", "o", "", "Custom output filename (without extension)")
	tailorCmd.Flags().StringVar(&tailorOutputDir, "output-dir", "", "Directory for generated artifacts")
	tailorCmd.Flags().IntVar(&tailorMaxIterations, "max-iterations", 0, "Page-fit optimization budget")
	tailorCmd.Flags().IntVar(&tailorMaxBullets, "max-bullets", 0, "Maximum bullets per job during tailoring")
	tailorCmd.Flags().IntVar(&tailorMaxProjects, "max-projects", 0, "Maximum projects during tailoring")
	tailorCmd.Flags().BoolVar(&tailorNoOptimize, "no-optimize", false, "Skip one-page optimization, compile once")
	tailorCmd.Flags().BoolVar(&tailorNoAI, "no-ai", false, "Skip AI tailoring and reduction, use heuristics only")
	tailorCmd.Flags().BoolVar(&tailorPreview, "preview", false, "Show tailored content without generating a PDF")
	tailorCmd.Flags().BoolVar(&tailorBrowser, "browser", false, "Use headless browser for SPA job sites (requires Chrome)")
	tailorCmd.Flags().BoolVarP(&tailorVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	tailorCmd.Flags().StringVar(&tailorAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for artifact persistence
	tailorCmd.Flags().StringVar(&tailorDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if tailorConfigPath != "" {
		loadedCfg, err := config.LoadConfig(tailorConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		if tailorVerbose {
			fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", tailorConfigPath)
		}
	}

	// CLI flags override config file values, but only when explicitly set
	if cmd.Flags().Changed("job") {
		cfg.Job = tailorJob
	}
	if cmd.Flags().Changed("job-url") {
		cfg.JobURL = tailorJobURL
	}
	if cmd.Flags().Changed("resume") {
		cfg.Resume = tailorResume
	}
	if cmd.Flags().Changed("template") {
		cfg.Template = tailorTemplate
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = tailorOutputDir
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.MaxIterations = tailorMaxIterations
	}
	if cmd.Flags().Changed("max-bullets") {
		cfg.MaxBulletsPerJob = tailorMaxBullets
	}
	if cmd.Flags().Changed("max-projects") {
		cfg.MaxProjects = tailorMaxProjects
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = tailorAPIKey
	}
	if cmd.Flags().Changed("browser") {
		cfg.UseBrowser = tailorBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = tailorVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = tailorDatabaseURL
	}

	cfg.FromEnv()
	cfg.ApplyDefaults()

	if cfg.Resume == "" {
		cfg.Resume = "resume.json"
	}

	if cfg.Job == "" && cfg.JobURL == "" {
		return fmt.Errorf("either --job or --job-url must be provided (via flag or config)")
	}
	if cfg.Job != "" && cfg.JobURL != "" {
		return fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	}

	// AI is on by default; --no-ai forces heuristics only
	cfg.UseAI = !tailorNoAI
	if cfg.UseAI && cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required (or pass --no-ai)")
	}

	opts := pipeline.Options{
		ResumePath:    cfg.Resume,
		JobPath:       cfg.Job,
		JobURL:        cfg.JobURL,
		TemplatePath:  cfg.Template,
		OutputDir:     cfg.OutputDir,
		OutputID:      tailorOut,
		MaxIterations: cfg.MaxIterations,
		MaxBullets:    cfg.MaxBulletsPerJob,
		MaxProjects:   cfg.MaxProjects,
		APIKey:        cfg.APIKey,
		UseAI:         cfg.UseAI,
		UseBrowser:    cfg.UseBrowser,
		Verbose:       cfg.Verbose,
		DatabaseURL:   cfg.DatabaseURL,
		Preview:       tailorPreview,
		SkipOptimize:  tailorNoOptimize,
	}

	result, err := pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}

	if tailorPreview {
		preview, err := json.MarshalIndent(result.FinalResume, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format preview: %w", err)
		}
		fmt.Fprintf(os.Stdout, "\n=== Tailored Resume Preview ===\n%s\n", preview)
	}

	return nil
}
