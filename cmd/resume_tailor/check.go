package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/schemas"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that all dependencies are properly configured",
	Long:  "Verifies the resume file, API key, LaTeX toolchain, PDF page counter, and template.",
	RunE:  runCheck,
}

var (
	checkResume   string
	checkTemplate string
)

func init() {
	checkCmd.Flags().StringVarP(&checkResume, "resume", "r", "resume.json", "Path to resume JSON file")
	checkCmd.Flags().StringVarP(&checkTemplate, "template", "t", config.DefaultTemplate, "Path to LaTeX template")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	fmt.Println("Checking configuration...")
	fmt.Println()

	allGood := true

	// Resume file and structure
	if _, err := os.Stat(checkResume); err == nil {
		fmt.Printf("+ Resume file found: %s\n", checkResume)
		if _, err := schemas.LoadResume(checkResume); err != nil {
			fmt.Printf("x Resume data is invalid: %v\n", err)
			allGood = false
		} else {
			fmt.Println("+ Resume data is valid")
		}
	} else {
		fmt.Printf("x Resume file not found: %s\n", checkResume)
		fmt.Println("  Run 'resume_tailor init' to create one")
		allGood = false
	}

	// API key
	if os.Getenv("GEMINI_API_KEY") != "" {
		fmt.Println("+ Gemini API key is configured")
	} else {
		fmt.Println("x Gemini API key not set")
		fmt.Println("  Add GEMINI_API_KEY to your .env file or environment")
		allGood = false
	}

	// LaTeX toolchain
	if _, err := exec.LookPath("pdflatex"); err == nil {
		fmt.Println("+ LaTeX (pdflatex) is installed")
	} else {
		fmt.Println("x LaTeX (pdflatex) not found")
		fmt.Println("  Install with: apt-get install texlive-latex-extra (or brew install --cask mactex)")
		allGood = false
	}

	// Page counter: either pdfinfo or ghostscript works
	_, pdfinfoErr := exec.LookPath("pdfinfo")
	_, gsErr := exec.LookPath("gs")
	switch {
	case pdfinfoErr == nil:
		fmt.Println("+ PDF page counter available (pdfinfo)")
	case gsErr == nil:
		fmt.Println("+ PDF page counter available (ghostscript)")
	default:
		fmt.Println("x Neither pdfinfo nor ghostscript found")
		fmt.Println("  Install with: apt-get install poppler-utils (or ghostscript)")
		allGood = false
	}

	// Template
	if _, err := os.Stat(checkTemplate); err == nil {
		fmt.Printf("+ Template found: %s\n", checkTemplate)
	} else {
		fmt.Printf("x Template not found: %s\n", checkTemplate)
		allGood = false
	}

	fmt.Println()
	if !allGood {
		return fmt.Errorf("some checks failed, fix the issues above")
	}
	fmt.Println("All checks passed! You're ready to tailor resumes.")
	return nil
}
