package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter resume JSON file",
	Long:  "Creates a resume.json template to fill in with your own information.",
	RunE:  runInit,
}

var (
	initPath  string
	initForce bool
)

func init() {
	initCmd.Flags().StringVarP(&initPath, "resume", "r", "resume.json", "Where to write the starter resume")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

const starterResume = `{
  "contact": {
    "name": "Your Name",
    "email": "you@example.com",
    "phone": "555-123-4567",
    "linkedin": "linkedin.com/in/yourname",
    "github": "github.com/yourname",
    "location": "City, ST"
  },
  "education": [
    {
      "institution": "State University",
      "location": "City, ST",
      "degree": "B.S. Computer Science",
      "dates": "Aug 2016 - May 2020",
      "gpa": "3.8/4.0",
      "notes": ["Relevant coursework: Algorithms, Distributed Systems"]
    }
  ],
  "experience": [
    {
      "title": "Software Engineer",
      "company": "Acme Corp",
      "location": "Remote",
      "dates": "Jun 2020 - Present",
      "bullets": [
        "Designed and shipped a customer-facing API serving 10k requests/minute",
        "Reduced deployment time by 40% by migrating CI to containerized builds",
        "Mentored two junior engineers through their first production launches"
      ]
    }
  ],
  "projects": [
    {
      "name": "Example Project",
      "technologies": "Go, PostgreSQL, Docker",
      "date": "2023",
      "bullets": [
        "Built a service that does something measurable and impressive"
      ]
    }
  ],
  "skills": {
    "Languages": ["Go", "Python", "SQL"],
    "Tools": ["Docker", "Kubernetes", "PostgreSQL"]
  }
}
`

func runInit(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(initPath); err == nil && !initForce {
		return fmt.Errorf("resume file already exists at %s (use --force to overwrite)", initPath)
	}

	if err := os.WriteFile(initPath, []byte(starterResume), 0644); err != nil {
		return fmt.Errorf("failed to write starter resume: %w", err)
	}

	fmt.Printf("Starter resume written to: %s\n", initPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the file with your personal information")
	fmt.Println("2. Create a .env file with your Gemini API key (GEMINI_API_KEY=...)")
	fmt.Println("3. Run: resume_tailor tailor --job <job_description_file>")
	return nil
}
