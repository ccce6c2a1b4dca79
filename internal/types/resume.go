// Package types provides type definitions for structured data used throughout the resume-tailor system.
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Contact holds the candidate contact block. It is never modified during
// tailoring or page-fit optimization.
type Contact struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=10"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Location string `json:"location,omitempty"`
}

// Education represents a single education entry.
type Education struct {
	Institution string   `json:"institution" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Degree      string   `json:"degree" validate:"required"`
	Dates       string   `json:"dates" validate:"required"`
	GPA         string   `json:"gpa,omitempty"`
	Notes       []string `json:"notes,omitempty"`
}

// Experience represents a work experience entry with its bullet points.
type Experience struct {
	Title    string   `json:"title" validate:"required"`
	Company  string   `json:"company" validate:"required"`
	Location string   `json:"location" validate:"required"`
	Dates    string   `json:"dates" validate:"required"`
	Bullets  []string `json:"bullets" validate:"required,min=1,dive,required"`
}

// Project represents a project entry with its bullet points.
type Project struct {
	Name         string   `json:"name" validate:"required"`
	Technologies string   `json:"technologies" validate:"required"`
	Date         string   `json:"date" validate:"required"`
	Bullets      []string `json:"bullets" validate:"required,min=1,dive,required"`
}

// Resume is the complete resume document. It is the subject of tailoring
// and page-fit optimization: each optimization iteration owns exactly one
// Resume value and produces the next one.
type Resume struct {
	Contact    Contact             `json:"contact"`
	Education  []Education         `json:"education" validate:"required,min=1,dive"`
	Experience []Experience        `json:"experience" validate:"required,min=1,dive"`
	Projects   []Project           `json:"projects,omitempty" validate:"dive"`
	Skills     map[string][]string `json:"skills" validate:"required,min=1"`
}

// InvalidResumeError reports a structural violation in a resume document.
type InvalidResumeError struct {
	Message string
	Cause   error
}

func (e *InvalidResumeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid resume: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid resume: %s", e.Message)
}

func (e *InvalidResumeError) Unwrap() error {
	return e.Cause
}

// Validate checks the structural invariants of the resume: required contact
// fields, at least one education entry, at least one experience entry, at
// least one skills category, and at least one bullet per experience and
// project entry.
func (r *Resume) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return &InvalidResumeError{Message: "structural validation failed", Cause: err}
	}

	// validator's min=1 on the skills map covers category count; empty
	// skill lists inside a category are still legal resumes, but empty
	// category names are not.
	for category, skills := range r.Skills {
		if category == "" {
			return &InvalidResumeError{Message: "skills category name must not be empty"}
		}
		if len(skills) == 0 {
			return &InvalidResumeError{Message: fmt.Sprintf("skills category %q has no entries", category)}
		}
	}

	return nil
}

// Clone returns a deep copy of the resume. The optimizer clones before
// reducing so that each iteration's input document is never aliased by the
// output of a prior iteration.
func (r *Resume) Clone() *Resume {
	clone := &Resume{
		Contact:    r.Contact,
		Education:  make([]Education, len(r.Education)),
		Experience: make([]Experience, len(r.Experience)),
		Skills:     make(map[string][]string, len(r.Skills)),
	}

	for i, edu := range r.Education {
		clone.Education[i] = edu
		if edu.Notes != nil {
			clone.Education[i].Notes = append([]string(nil), edu.Notes...)
		}
	}

	for i, exp := range r.Experience {
		clone.Experience[i] = exp
		clone.Experience[i].Bullets = append([]string(nil), exp.Bullets...)
	}

	if r.Projects != nil {
		clone.Projects = make([]Project, len(r.Projects))
		for i, proj := range r.Projects {
			clone.Projects[i] = proj
			clone.Projects[i].Bullets = append([]string(nil), proj.Bullets...)
		}
	}

	for category, skills := range r.Skills {
		clone.Skills[category] = append([]string(nil), skills...)
	}

	return clone
}

// Equal reports whether two resumes have identical content. Used by the
// optimizer tests to assert reduction idempotence.
func (r *Resume) Equal(other *Resume) bool {
	if other == nil {
		return false
	}
	if r.Contact != other.Contact {
		return false
	}
	if len(r.Education) != len(other.Education) ||
		len(r.Experience) != len(other.Experience) ||
		len(r.Projects) != len(other.Projects) ||
		len(r.Skills) != len(other.Skills) {
		return false
	}
	for i := range r.Education {
		if !educationEqual(&r.Education[i], &other.Education[i]) {
			return false
		}
	}
	for i := range r.Experience {
		a, b := &r.Experience[i], &other.Experience[i]
		if a.Title != b.Title || a.Company != b.Company || a.Location != b.Location ||
			a.Dates != b.Dates || !stringsEqual(a.Bullets, b.Bullets) {
			return false
		}
	}
	for i := range r.Projects {
		a, b := &r.Projects[i], &other.Projects[i]
		if a.Name != b.Name || a.Technologies != b.Technologies ||
			a.Date != b.Date || !stringsEqual(a.Bullets, b.Bullets) {
			return false
		}
	}
	for category, skills := range r.Skills {
		if !stringsEqual(skills, other.Skills[category]) {
			return false
		}
	}
	return true
}

func educationEqual(a, b *Education) bool {
	return a.Institution == b.Institution && a.Location == b.Location &&
		a.Degree == b.Degree && a.Dates == b.Dates && a.GPA == b.GPA &&
		stringsEqual(a.Notes, b.Notes)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
