package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a tailoring run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	JobSource   string     `json:"job_source"`
	Status      string     `json:"status"`
	PageCount   int        `json:"page_count"`
	Iterations  int        `json:"iterations"`
	Succeeded   bool       `json:"succeeded"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ArtifactStep constants for known artifact types
const (
	StepJobPosting     = "job_posting"
	StepSourceResume   = "source_resume"
	StepTailoredResume = "tailored_resume"
	StepFinalResume    = "final_resume"
	StepResumeTex      = "resume_tex"
	StepResumePDF      = "resume_pdf"
)

// Artifact category constants, grouping steps by pipeline stage
const (
	CategoryIngestion    = "ingestion"
	CategoryTailoring    = "tailoring"
	CategoryOptimization = "optimization"
)
