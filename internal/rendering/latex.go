package rendering

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/jonathan/resume-tailor/internal/types"
)

// TemplateData represents the data structure passed to the LaTeX template.
// All string fields are already LaTeX-escaped.
type TemplateData struct {
	Name       string
	Email      string
	Phone      string
	LinkedIn   string
	GitHub     string
	Location   string
	Education  []EducationSection
	Experience []ExperienceSection
	Projects   []ProjectSection
	Skills     []SkillCategory
}

// EducationSection represents a single education entry.
type EducationSection struct {
	Institution string
	Location    string
	Degree      string
	Dates       string
	GPA         string
	Notes       []string
}

// ExperienceSection represents a single role entry.
type ExperienceSection struct {
	Title    string
	Company  string
	Location string
	Dates    string
	Bullets  []string
}

// ProjectSection represents a single project entry.
type ProjectSection struct {
	Name         string
	Technologies string
	Date         string
	Bullets      []string
}

// SkillCategory represents one line of the skills block.
type SkillCategory struct {
	Category string
	Items    string // comma-joined, escaped
}

// RenderResume renders a LaTeX resume from a template file.
func RenderResume(resume *types.Resume, templatePath string) (string, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return "", err
	}

	data := buildTemplateData(resume)

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}

	return result.String(), nil
}

// parseTemplate reads and parses a LaTeX template file
func parseTemplate(templatePath string) (*template.Template, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}

	// Escaping happens in buildTemplateData, so templates interpolate
	// fields directly without a helper func.
	tmpl, err := template.New("resume").Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}

	return tmpl, nil
}

// buildTemplateData constructs the template data structure from a resume.
// All text is escaped here so the template can interpolate fields directly.
func buildTemplateData(resume *types.Resume) *TemplateData {
	data := &TemplateData{
		Name:     EscapeLaTeX(resume.Contact.Name),
		Email:    EscapeLaTeX(resume.Contact.Email),
		Phone:    EscapeLaTeX(resume.Contact.Phone),
		LinkedIn: EscapeLaTeX(resume.Contact.LinkedIn),
		GitHub:   EscapeLaTeX(resume.Contact.GitHub),
		Location: EscapeLaTeX(resume.Contact.Location),
	}

	for _, edu := range resume.Education {
		section := EducationSection{
			Institution: EscapeLaTeX(edu.Institution),
			Location:    EscapeLaTeX(edu.Location),
			Degree:      EscapeLaTeX(edu.Degree),
			Dates:       EscapeLaTeX(edu.Dates),
			GPA:         EscapeLaTeX(edu.GPA),
		}
		for _, note := range edu.Notes {
			section.Notes = append(section.Notes, EscapeLaTeX(note))
		}
		data.Education = append(data.Education, section)
	}

	for _, exp := range resume.Experience {
		section := ExperienceSection{
			Title:    EscapeLaTeX(exp.Title),
			Company:  EscapeLaTeX(exp.Company),
			Location: EscapeLaTeX(exp.Location),
			Dates:    EscapeLaTeX(exp.Dates),
		}
		for _, b := range exp.Bullets {
			section.Bullets = append(section.Bullets, EscapeLaTeX(b))
		}
		data.Experience = append(data.Experience, section)
	}

	for _, proj := range resume.Projects {
		section := ProjectSection{
			Name:         EscapeLaTeX(proj.Name),
			Technologies: EscapeLaTeX(proj.Technologies),
			Date:         EscapeLaTeX(proj.Date),
		}
		for _, b := range proj.Bullets {
			section.Bullets = append(section.Bullets, EscapeLaTeX(b))
		}
		data.Projects = append(data.Projects, section)
	}

	// Sort categories so identical resumes always render identical documents
	categories := make([]string, 0, len(resume.Skills))
	for category := range resume.Skills {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		data.Skills = append(data.Skills, SkillCategory{
			Category: EscapeLaTeX(category),
			Items:    EscapeLaTeX(strings.Join(resume.Skills[category], ", ")),
		})
	}

	return data
}
