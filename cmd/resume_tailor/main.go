// Package main provides the entry point for the Resume Tailor CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_tailor",
	Short: "AI-powered resume tailoring",
	Long:  "Resume Tailor rewrites a structured resume to match a job posting and compiles it into a one-page LaTeX PDF.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
