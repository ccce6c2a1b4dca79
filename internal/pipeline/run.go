// Package pipeline orchestrates the full tailoring flow: ingest the job
// posting and the source resume in parallel, tailor the resume to the
// posting, then optimize the rendered document down to a single page.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/optimizer"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/tailoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for running the pipeline
type Options struct {
	ResumePath    string
	JobPath       string
	JobURL        string
	TemplatePath  string
	OutputDir     string
	OutputID      string
	MaxIterations int
	MaxBullets    int
	MaxProjects   int
	APIKey        string
	UseAI         bool
	UseBrowser    bool
	Verbose       bool
	DatabaseURL   string
	OnProgress    ProgressCallback

	// Preview stops after tailoring: no rendering, no optimization. The
	// returned Result carries the tailored resume and a nil Optimization.
	Preview bool
	// SkipOptimize renders and compiles once without the page-fit loop.
	SkipOptimize bool

	// Client overrides the LLM client constructed from APIKey. Used by
	// tests and by callers that manage client lifecycle themselves.
	Client llm.Client
	// Out receives progress prints. Defaults to os.Stdout.
	Out io.Writer
}

// Result holds the outputs of a completed pipeline run.
type Result struct {
	RunID        uuid.UUID
	SourceResume *types.Resume
	FinalResume  *types.Resume
	Optimization *optimizer.Result
	TexPath      string
	PDFPath      string
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *Options, runID uuid.UUID, step, category, message string, content any) {
	if opts.OnProgress == nil {
		return
	}
	event := ProgressEvent{
		Step:     step,
		Category: category,
		Message:  message,
		Content:  content,
	}
	if runID != uuid.Nil {
		event.RunID = runID.String()
	}
	opts.OnProgress(event)
}

// Run executes the tailoring pipeline end to end. Database persistence is
// best effort: a missing or unreachable database downgrades to a warning
// and the pipeline continues on the filesystem alone.
func Run(ctx context.Context, opts Options) (*Result, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)

	if opts.OutputID == "" {
		opts.OutputID = fmt.Sprintf("resume_%s", time.Now().Format("20060102_150405"))
	}

	var database *db.DB
	var runID uuid.UUID
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Fprintf(out, "Warning: failed to connect to database: %v\n", err)
			fmt.Fprintf(out, "Continuing without database persistence...\n")
			database = nil
		} else {
			defer database.Close()
			if err := database.EnsureSchema(ctx); err != nil {
				fmt.Fprintf(out, "Warning: failed to ensure database schema: %v\n", err)
				database.Close()
				database = nil
			} else if opts.Verbose {
				fmt.Fprintf(out, "[VERBOSE] Connected to database\n")
			}
		}
	}

	// =========================================================================
	// PARALLEL INGESTION: source resume + job posting
	// =========================================================================
	fmt.Fprintf(out, "Step 1/4: Loading resume and job posting...\n")

	g, gCtx := errgroup.WithContext(ctx)

	var sourceResume *types.Resume
	var jobText string
	var mu sync.Mutex

	g.Go(func() error {
		resume, err := schemas.LoadResume(opts.ResumePath)
		if err != nil {
			return fmt.Errorf("loading resume failed: %w", err)
		}
		mu.Lock()
		sourceResume = resume
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		var text string
		var err error
		if opts.JobURL != "" {
			text, err = ingestion.JobFromURL(gCtx, opts.JobURL, opts.UseBrowser, opts.Verbose)
			if err != nil {
				return fmt.Errorf("job ingestion from URL failed: %w", err)
			}
		} else {
			text, err = ingestion.JobFromFile(opts.JobPath)
			if err != nil {
				return fmt.Errorf("job ingestion from file failed: %w", err)
			}
		}
		mu.Lock()
		jobText = text
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Verbose {
		printer.PrintResumeSummary("Source Resume", sourceResume)
	}

	jobSource := opts.JobURL
	if jobSource == "" {
		jobSource = opts.JobPath
	}
	if database != nil {
		var err error
		runID, err = database.CreateRun(ctx, jobSource)
		if err != nil {
			fmt.Fprintf(out, "Warning: failed to create database run: %v\n", err)
			runID = uuid.Nil
		} else {
			if opts.Verbose {
				fmt.Fprintf(out, "[VERBOSE] Created database run: %s\n", runID)
			}
			_ = database.SaveTextArtifact(ctx, runID, db.StepJobPosting, db.CategoryIngestion, jobText)
			_ = database.SaveArtifact(ctx, runID, db.StepSourceResume, db.CategoryIngestion, sourceResume)
		}
	}
	emitProgress(&opts, runID, db.StepJobPosting, db.CategoryIngestion,
		fmt.Sprintf("Ingested job posting from %s", jobSource), nil)

	// =========================================================================
	// TAILORING
	// =========================================================================
	client := opts.Client
	if client == nil && opts.UseAI {
		if opts.APIKey == "" {
			fmt.Fprintf(out, "Warning: no API key configured, skipping AI tailoring\n")
		} else {
			var err error
			client, err = llm.NewClient(ctx, llm.DefaultGeminiConfig(), opts.APIKey)
			if err != nil {
				return nil, fmt.Errorf("creating LLM client failed: %w", err)
			}
			defer client.Close()
		}
	}

	tailored := sourceResume
	if opts.UseAI && client != nil {
		fmt.Fprintf(out, "Step 2/4: Tailoring resume to the job posting...\n")
		svc := tailoring.NewService(client)
		tailorOpts := tailoring.Options{
			MaxBulletsPerJob: opts.MaxBullets,
			MaxProjects:      opts.MaxProjects,
		}
		result, err := svc.Tailor(ctx, sourceResume, jobText, tailorOpts)
		if err != nil {
			if database != nil && runID != uuid.Nil {
				_ = database.CompleteRun(ctx, runID, db.StatusFailed, 0, 0, false)
			}
			return nil, fmt.Errorf("tailoring failed: %w", err)
		}
		tailored = result
		if opts.Verbose {
			printer.PrintResumeSummary("Tailored Resume", tailored)
		}
	} else {
		fmt.Fprintf(out, "Step 2/4: Skipping AI tailoring, using source resume as-is\n")
	}

	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepTailoredResume, db.CategoryTailoring, tailored)
	}
	emitProgress(&opts, runID, db.StepTailoredResume, db.CategoryTailoring,
		"Tailored resume content", tailored)

	if opts.Preview {
		if database != nil && runID != uuid.Nil {
			_ = database.CompleteRun(ctx, runID, db.StatusCompleted, 0, 0, false)
		}
		fmt.Fprintf(out, "Preview complete. Run without preview to generate the PDF.\n")
		return &Result{
			RunID:        runID,
			SourceResume: sourceResume,
			FinalResume:  tailored,
		}, nil
	}

	// =========================================================================
	// PAGE-FIT OPTIMIZATION
	// =========================================================================

	renderer, err := rendering.NewRenderer(opts.TemplatePath, opts.OutputDir)
	if err != nil {
		if database != nil && runID != uuid.Nil {
			_ = database.CompleteRun(ctx, runID, db.StatusFailed, 0, 0, false)
		}
		return nil, fmt.Errorf("initializing renderer failed: %w", err)
	}

	var optResult *optimizer.Result
	if opts.SkipOptimize {
		fmt.Fprintf(out, "Step 3/4: Rendering PDF without page-fit optimization...\n")
		pdfPath, pageCount, rerr := renderer.RenderAndCompile(ctx, tailored, opts.OutputID)
		if rerr != nil {
			if database != nil && runID != uuid.Nil {
				_ = database.CompleteRun(ctx, runID, db.StatusFailed, 0, 0, false)
			}
			return nil, fmt.Errorf("rendering failed: %w", rerr)
		}
		optResult = &optimizer.Result{
			Resume:         tailored,
			PDFPath:        pdfPath,
			PageCount:      pageCount,
			IterationsUsed: 1,
			Succeeded:      pageCount == 1,
		}
	} else {
		fmt.Fprintf(out, "Step 3/4: Optimizing resume to fit one page...\n")

		var reducer optimizer.ContentReducer
		if client != nil {
			reducer = tailoring.NewReducer(client)
		}

		opt := optimizer.New(renderer, reducer)
		opt.SetWarnOutput(out)

		optOpts := optimizer.Options{
			MaxIterations: opts.MaxIterations,
			UseAI:         opts.UseAI && client != nil,
		}
		if opts.Verbose {
			optOpts.OnIteration = printer.PrintOptimizationProgress
			optOpts.OnFallback = printer.PrintFallbackWarning
		}

		optResult, err = opt.Optimize(ctx, tailored, opts.OutputID, optOpts)
		if err != nil {
			if database != nil && runID != uuid.Nil {
				_ = database.CompleteRun(ctx, runID, db.StatusFailed, 0, 0, false)
			}
			return nil, fmt.Errorf("page-fit optimization failed: %w", err)
		}
	}
	if opts.Verbose {
		printer.PrintOptimizationResult(optResult)
	}
	emitProgress(&opts, runID, db.StepFinalResume, db.CategoryOptimization,
		fmt.Sprintf("Optimized resume to %d page(s) in %d iteration(s)", optResult.PageCount, optResult.IterationsUsed), nil)

	// =========================================================================
	// PERSIST FINAL ARTIFACTS
	// =========================================================================
	fmt.Fprintf(out, "Step 4/4: Saving final artifacts...\n")

	texPath := filepath.Join(renderer.GeneratedDir(), opts.OutputID+".tex")
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepFinalResume, db.CategoryOptimization, optResult.Resume)
		if texContent, readErr := os.ReadFile(texPath); readErr == nil {
			_ = database.SaveTextArtifact(ctx, runID, db.StepResumeTex, db.CategoryOptimization, string(texContent))
		}
		if pdfContent, readErr := os.ReadFile(optResult.PDFPath); readErr == nil {
			_ = database.SaveBinaryArtifact(ctx, runID, db.StepResumePDF, db.CategoryOptimization, pdfContent)
		}
		_ = database.CompleteRun(ctx, runID, db.StatusCompleted,
			optResult.PageCount, optResult.IterationsUsed, optResult.Succeeded)
	}

	if optResult.Succeeded {
		fmt.Fprintf(out, "Done! One-page resume written to %s\n", optResult.PDFPath)
	} else {
		fmt.Fprintf(out, "Done with best effort: resume is %d page(s), written to %s\n", optResult.PageCount, optResult.PDFPath)
	}

	return &Result{
		RunID:        runID,
		SourceResume: sourceResume,
		FinalResume:  optResult.Resume,
		Optimization: optResult,
		TexPath:      texPath,
		PDFPath:      optResult.PDFPath,
	}, nil
}
