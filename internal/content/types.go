// Package content holds the portfolio documents (projects, services,
// testimonials, skills), their local SQLite store and the page loader.
package content

import (
	"context"
	"errors"
	"time"
)

// DocType is the document type in the content store.
type DocType string

const (
	TypeProject     DocType = "project"
	TypeService     DocType = "service"
	TypeTestimonial DocType = "testimonial"
	TypeSkill       DocType = "skill"
)

// DocTypes lists every document type in page order.
var DocTypes = []DocType{TypeSkill, TypeProject, TypeService, TypeTestimonial}

// ParseDocType validates a document type name.
func ParseDocType(s string) (DocType, bool) {
	for _, t := range DocTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("content: not found")

// Image references an uploaded image. URL is resolved for rendering; Ref
// is the asset reference of the hosted store.
type Image struct {
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	Alt string `json:"alt,omitempty" yaml:"alt,omitempty"`
}

// Project is a portfolio entry as listed on the landing page.
type Project struct {
	ID               string    `json:"id" yaml:"id,omitempty"`
	Title            string    `json:"title" yaml:"title"`
	Slug             string    `json:"slug" yaml:"slug"`
	ShortDescription string    `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	Description      string    `json:"description,omitempty" yaml:"description,omitempty"`
	MainImage        *Image    `json:"main_image,omitempty" yaml:"main_image,omitempty"`
	URL              string    `json:"url,omitempty" yaml:"url,omitempty"`
	Order            *int      `json:"order,omitempty" yaml:"order,omitempty"`
	CreatedAt        time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// ProjectDetail is a project with the case-study fields of its own page.
type ProjectDetail struct {
	Project  `yaml:",inline"`
	Goal     string   `json:"goal,omitempty" yaml:"goal,omitempty"`
	Workflow []string `json:"workflow,omitempty" yaml:"workflow,omitempty"`
	Results  string   `json:"results,omitempty" yaml:"results,omitempty"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
	Gallery  []Image  `json:"gallery,omitempty" yaml:"gallery,omitempty"`
	Client   string   `json:"client,omitempty" yaml:"client,omitempty"`
	Year     int      `json:"year,omitempty" yaml:"year,omitempty"`
}

// Service is an offered service.
type Service struct {
	ID               string    `json:"id" yaml:"id,omitempty"`
	Title            string    `json:"title" yaml:"title"`
	ShortDescription string    `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	Description      string    `json:"description,omitempty" yaml:"description,omitempty"`
	Icon             string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Order            *int      `json:"order,omitempty" yaml:"order,omitempty"`
	CreatedAt        time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// Testimonial is a client reference.
type Testimonial struct {
	ID        string    `json:"id" yaml:"id,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Company   string    `json:"company,omitempty" yaml:"company,omitempty"`
	Role      string    `json:"role,omitempty" yaml:"role,omitempty"`
	Quote     string    `json:"quote" yaml:"quote"`
	Avatar    *Image    `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Order     *int      `json:"order,omitempty" yaml:"order,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// Level is a skill proficiency.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
)

var levelLabels = map[Level]string{
	LevelBeginner:     "Začátečník",
	LevelIntermediate: "Středně pokročilý",
	LevelAdvanced:     "Pokročilý",
	LevelExpert:       "Expert",
}

// Label returns the display name of the level.
func (l Level) Label() string { return levelLabels[l] }

// Valid reports whether l is empty or a known level.
func (l Level) Valid() bool {
	if l == "" {
		return true
	}
	_, ok := levelLabels[l]
	return ok
}

// Skill is a technology badge.
type Skill struct {
	ID        string    `json:"id" yaml:"id,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Emoji     string    `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Level     Level     `json:"level,omitempty" yaml:"level,omitempty"`
	Order     *int      `json:"order,omitempty" yaml:"order,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// Source is the read API of a content store. Collections are ordered by
// Order ascending, then by creation time: newest first for projects,
// oldest first for everything else.
type Source interface {
	Projects(ctx context.Context) ([]Project, error)
	Services(ctx context.Context) ([]Service, error)
	Testimonials(ctx context.Context) ([]Testimonial, error)
	Skills(ctx context.Context) ([]Skill, error)
	// ProjectBySlug returns ErrNotFound when no project has the slug.
	ProjectBySlug(ctx context.Context, slug string) (*ProjectDetail, error)
}
