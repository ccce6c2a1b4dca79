package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

// oversizedResume returns a resume that exceeds every heuristic bound.
func oversizedResume() *types.Resume {
	return &types.Resume{
		Contact: types.Contact{
			Name:  "Jordan Smith",
			Email: "jordan@example.com",
			Phone: "555-123-4567",
		},
		Education: []types.Education{
			{Institution: "State University", Location: "Springfield, IL", Degree: "M.S. Computer Science", Dates: "2022 - 2024", GPA: "3.9", Notes: []string{"Thesis on distributed systems"}},
			{Institution: "City College", Location: "Chicago, IL", Degree: "B.S. Computer Science", Dates: "2018 - 2022", GPA: "3.7", Notes: []string{"Dean's list"}},
		},
		Experience: []types.Experience{
			{Title: "Software Engineer", Company: "Acme Corp", Location: "Chicago, IL", Dates: "2022 - Present",
				Bullets: []string{"b1", "b2", "b3", "b4", "b5"}},
			{Title: "Intern", Company: "Globex", Location: "Remote", Dates: "2021",
				Bullets: []string{"b1", "b2", "b3", "b4"}},
		},
		Projects: []types.Project{
			{Name: "P1", Technologies: "Go", Date: "2023", Bullets: []string{"b1", "b2", "b3"}},
			{Name: "P2", Technologies: "Python", Date: "2023", Bullets: []string{"b1", "b2", "b3"}},
			{Name: "P3", Technologies: "Rust", Date: "2022", Bullets: []string{"b1"}},
			{Name: "P4", Technologies: "C++", Date: "2021", Bullets: []string{"b1", "b2"}},
		},
		Skills: map[string][]string{"Languages": {"Go"}},
	}
}

func TestReduceHeuristic_TruncatesToBounds(t *testing.T) {
	reduced := ReduceHeuristic(oversizedResume())

	assert.Len(t, reduced.Projects, MaxProjects)
	assert.Equal(t, "P1", reduced.Projects[0].Name)
	assert.Equal(t, "P2", reduced.Projects[1].Name)

	for _, exp := range reduced.Experience {
		assert.LessOrEqual(t, len(exp.Bullets), MaxExperienceBullets)
		assert.GreaterOrEqual(t, len(exp.Bullets), 1)
	}
	for _, proj := range reduced.Projects {
		assert.LessOrEqual(t, len(proj.Bullets), MaxProjectBullets)
		assert.GreaterOrEqual(t, len(proj.Bullets), 1)
	}
}

func TestReduceHeuristic_PreservesPrimaryEducation(t *testing.T) {
	reduced := ReduceHeuristic(oversizedResume())

	require.Len(t, reduced.Education, 2)
	assert.Equal(t, "3.9", reduced.Education[0].GPA)
	assert.NotEmpty(t, reduced.Education[0].Notes)
	assert.Empty(t, reduced.Education[1].GPA)
	assert.Nil(t, reduced.Education[1].Notes)
}

func TestReduceHeuristic_DoesNotMutateInput(t *testing.T) {
	original := oversizedResume()
	_ = ReduceHeuristic(original)

	assert.Len(t, original.Projects, 4)
	assert.Len(t, original.Experience[0].Bullets, 5)
	assert.Equal(t, "3.7", original.Education[1].GPA)
}

func TestReduceHeuristic_Idempotent(t *testing.T) {
	once := ReduceHeuristic(oversizedResume())
	twice := ReduceHeuristic(once)

	assert.True(t, once.Equal(twice))
}

func TestReduceHeuristic_StillValid(t *testing.T) {
	reduced := ReduceHeuristic(oversizedResume())
	require.NoError(t, reduced.Validate())
}

func TestReduceHeuristic_ContactUntouched(t *testing.T) {
	original := oversizedResume()
	reduced := ReduceHeuristic(original)

	assert.Equal(t, original.Contact, reduced.Contact)
}
