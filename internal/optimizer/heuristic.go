package optimizer

import "github.com/jonathan/resume-tailor/internal/types"

// Heuristic reduction bounds. Applied in a fixed order, each clamped so the
// resume's minimum-entry and minimum-bullet invariants are never violated.
const (
	// MaxProjects is the project count the heuristic truncates to.
	MaxProjects = 2
	// MaxExperienceBullets is the per-experience bullet cap.
	MaxExperienceBullets = 3
	// MaxProjectBullets is the per-project bullet cap.
	MaxProjectBullets = 2
)

// ReduceHeuristic deterministically shrinks a resume without any AI
// assistance. It returns a new document and never mutates its input.
//
// Strategies, in order: truncate projects to the first MaxProjects, cap each
// experience entry at MaxExperienceBullets bullets, cap each remaining
// project at MaxProjectBullets bullets, and clear GPA and notes from every
// education entry except the first. Once a resume is within these bounds the
// function is idempotent, so repeated application converges instead of
// oscillating.
func ReduceHeuristic(resume *types.Resume) *types.Resume {
	reduced := resume.Clone()

	if len(reduced.Projects) > MaxProjects {
		reduced.Projects = reduced.Projects[:MaxProjects]
	}

	for i := range reduced.Experience {
		if len(reduced.Experience[i].Bullets) > MaxExperienceBullets {
			reduced.Experience[i].Bullets = reduced.Experience[i].Bullets[:MaxExperienceBullets]
		}
	}

	for i := range reduced.Projects {
		if len(reduced.Projects[i].Bullets) > MaxProjectBullets {
			reduced.Projects[i].Bullets = reduced.Projects[i].Bullets[:MaxProjectBullets]
		}
	}

	// The first education entry is the primary one and keeps its details.
	for i := 1; i < len(reduced.Education); i++ {
		reduced.Education[i].GPA = ""
		reduced.Education[i].Notes = nil
	}

	return reduced
}
