package cms

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jvesely/portfolio/internal/content"
)

const projectFields = `_id, _createdAt, title, slug, shortDescription, description, mainImage, url, order`

const projectDetailFields = projectFields + `, goal, workflow, results, features, gallery, client, year`

const (
	projectsQuery = `*[_type == "project"] | order(coalesce(order, 1e9) asc, _createdAt desc) {` + projectFields + `}`

	allProjectsQuery = `*[_type == "project"] | order(coalesce(order, 1e9) asc, _createdAt desc) {` + projectDetailFields + `}`

	projectBySlugQuery = `*[_type == "project" && slug.current == $slug][0]{` + projectDetailFields + `}`

	servicesQuery = `*[_type == "service"] | order(coalesce(order, 1e9) asc, _createdAt asc) {
  _id, _createdAt, title, shortDescription, description, icon, order
}`

	testimonialsQuery = `*[_type == "testimonial"] | order(coalesce(order, 1e9) asc, _createdAt asc) {
  _id, _createdAt, name, company, role, quote, avatar, order
}`

	skillsQuery = `*[_type == "skill"] | order(coalesce(order, 1e9) asc, _createdAt asc) {
  _id, _createdAt, name, emoji, level, order
}`
)

// richText accepts either plain text or an array of portable text blocks,
// which are flattened to paragraphs.
type richText string

func (t *richText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = richText(s)
		return nil
	}
	var blocks []struct {
		Children []struct {
			Text string `json:"text"`
		} `json:"children"`
	}
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	paragraphs := make([]string, 0, len(blocks))
	for _, b := range blocks {
		var sb strings.Builder
		for _, ch := range b.Children {
			sb.WriteString(ch.Text)
		}
		if sb.Len() > 0 {
			paragraphs = append(paragraphs, sb.String())
		}
	}
	*t = richText(strings.Join(paragraphs, "\n\n"))
	return nil
}

type wireSlug struct {
	Current string `json:"current"`
}

type wireProject struct {
	ID               string      `json:"_id"`
	CreatedAt        time.Time   `json:"_createdAt"`
	Title            string      `json:"title"`
	Slug             *wireSlug   `json:"slug"`
	ShortDescription string      `json:"shortDescription"`
	Description      richText    `json:"description"`
	MainImage        *wireImage  `json:"mainImage"`
	URL              string      `json:"url"`
	Order            *float64    `json:"order"`
	Goal             richText    `json:"goal"`
	Workflow         []string    `json:"workflow"`
	Results          richText    `json:"results"`
	Features         []string    `json:"features"`
	Gallery          []wireImage `json:"gallery"`
	ClientName       string      `json:"client"`
	Year             *float64    `json:"year"`
}

type wireService struct {
	ID               string    `json:"_id"`
	CreatedAt        time.Time `json:"_createdAt"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription"`
	Description      richText  `json:"description"`
	Icon             string    `json:"icon"`
	Order            *float64  `json:"order"`
}

type wireTestimonial struct {
	ID        string     `json:"_id"`
	CreatedAt time.Time  `json:"_createdAt"`
	Name      string     `json:"name"`
	Company   string     `json:"company"`
	Role      string     `json:"role"`
	Quote     richText   `json:"quote"`
	Avatar    *wireImage `json:"avatar"`
	Order     *float64   `json:"order"`
}

type wireSkill struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"_createdAt"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	Level     string    `json:"level"`
	Order     *float64  `json:"order"`
}

// number fields arrive as JSON numbers that may carry a fraction.
func intPtr(f *float64) *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func (c *Client) project(w wireProject) content.ProjectDetail {
	p := content.ProjectDetail{
		Project: content.Project{
			ID:               w.ID,
			Title:            w.Title,
			ShortDescription: w.ShortDescription,
			Description:      string(w.Description),
			MainImage:        c.image(w.MainImage),
			URL:              w.URL,
			Order:            intPtr(w.Order),
			CreatedAt:        w.CreatedAt,
		},
		Goal:     string(w.Goal),
		Workflow: w.Workflow,
		Results:  string(w.Results),
		Features: w.Features,
		Client:   w.ClientName,
	}
	if w.Slug != nil {
		p.Slug = w.Slug.Current
	}
	if w.Year != nil {
		p.Year = int(*w.Year)
	}
	for i := range w.Gallery {
		if img := c.image(&w.Gallery[i]); img != nil {
			p.Gallery = append(p.Gallery, *img)
		}
	}
	return p
}

var _ content.Source = (*Client)(nil)

// Projects implements content.Source.
func (c *Client) Projects(ctx context.Context) ([]content.Project, error) {
	var wire []wireProject
	if _, err := c.Query(ctx, projectsQuery, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]content.Project, 0, len(wire))
	for _, w := range wire {
		out = append(out, c.project(w).Project)
	}
	return out, nil
}

// AllProjects returns every project with its case-study fields.
func (c *Client) AllProjects(ctx context.Context) ([]content.ProjectDetail, error) {
	var wire []wireProject
	if _, err := c.Query(ctx, allProjectsQuery, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]content.ProjectDetail, 0, len(wire))
	for _, w := range wire {
		out = append(out, c.project(w))
	}
	return out, nil
}

// ProjectBySlug implements content.Source.
func (c *Client) ProjectBySlug(ctx context.Context, slug string) (*content.ProjectDetail, error) {
	var wire wireProject
	found, err := c.Query(ctx, projectBySlugQuery, map[string]any{"slug": slug}, &wire)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, content.ErrNotFound
	}
	p := c.project(wire)
	return &p, nil
}

// Services implements content.Source.
func (c *Client) Services(ctx context.Context) ([]content.Service, error) {
	var wire []wireService
	if _, err := c.Query(ctx, servicesQuery, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]content.Service, 0, len(wire))
	for _, w := range wire {
		out = append(out, content.Service{
			ID:               w.ID,
			Title:            w.Title,
			ShortDescription: w.ShortDescription,
			Description:      string(w.Description),
			Icon:             w.Icon,
			Order:            intPtr(w.Order),
			CreatedAt:        w.CreatedAt,
		})
	}
	return out, nil
}

// Testimonials implements content.Source.
func (c *Client) Testimonials(ctx context.Context) ([]content.Testimonial, error) {
	var wire []wireTestimonial
	if _, err := c.Query(ctx, testimonialsQuery, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]content.Testimonial, 0, len(wire))
	for _, w := range wire {
		out = append(out, content.Testimonial{
			ID:        w.ID,
			Name:      w.Name,
			Company:   w.Company,
			Role:      w.Role,
			Quote:     string(w.Quote),
			Avatar:    c.image(w.Avatar),
			Order:     intPtr(w.Order),
			CreatedAt: w.CreatedAt,
		})
	}
	return out, nil
}

// Skills implements content.Source.
func (c *Client) Skills(ctx context.Context) ([]content.Skill, error) {
	var wire []wireSkill
	if _, err := c.Query(ctx, skillsQuery, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]content.Skill, 0, len(wire))
	for _, w := range wire {
		out = append(out, content.Skill{
			ID:        w.ID,
			Name:      w.Name,
			Emoji:     w.Emoji,
			Level:     content.Level(w.Level),
			Order:     intPtr(w.Order),
			CreatedAt: w.CreatedAt,
		})
	}
	return out, nil
}

// Snapshot fetches every collection with full project details.
func (c *Client) Snapshot(ctx context.Context) (content.Bundle, error) {
	var b content.Bundle
	var err error
	if b.Projects, err = c.AllProjects(ctx); err != nil {
		return b, err
	}
	if b.Services, err = c.Services(ctx); err != nil {
		return b, err
	}
	if b.Testimonials, err = c.Testimonials(ctx); err != nil {
		return b, err
	}
	if b.Skills, err = c.Skills(ctx); err != nil {
		return b, err
	}
	return b, nil
}
