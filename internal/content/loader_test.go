package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	projects     []Project
	services     []Service
	testimonials []Testimonial
	skills       []Skill
	failing      map[string]error
	block        string
}

func (f *fakeSource) err(ctx context.Context, name string) error {
	if f.block == name {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.failing[name]
}

func (f *fakeSource) Projects(ctx context.Context) ([]Project, error) {
	if err := f.err(ctx, "projects"); err != nil {
		return nil, err
	}
	return f.projects, nil
}

func (f *fakeSource) Services(ctx context.Context) ([]Service, error) {
	if err := f.err(ctx, "services"); err != nil {
		return nil, err
	}
	return f.services, nil
}

func (f *fakeSource) Testimonials(ctx context.Context) ([]Testimonial, error) {
	if err := f.err(ctx, "testimonials"); err != nil {
		return nil, err
	}
	return f.testimonials, nil
}

func (f *fakeSource) Skills(ctx context.Context) ([]Skill, error) {
	if err := f.err(ctx, "skills"); err != nil {
		return nil, err
	}
	return f.skills, nil
}

func (f *fakeSource) ProjectBySlug(ctx context.Context, slug string) (*ProjectDetail, error) {
	for _, p := range f.projects {
		if p.Slug == slug {
			return &ProjectDetail{Project: p}, nil
		}
	}
	return nil, ErrNotFound
}

func TestLoadHome_AllSections(t *testing.T) {
	src := &fakeSource{
		projects:     []Project{{Title: "E-shop", Slug: "e-shop"}},
		services:     []Service{{Title: "Weby"}},
		testimonials: []Testimonial{{Name: "Jana", Quote: "Super"}},
		skills:       []Skill{{Name: "Go"}, {Name: "SQL"}},
	}

	home := LoadHome(context.Background(), src, time.Second, nil)

	assert.Len(t, home.Projects.Items, 1)
	assert.Len(t, home.Services.Items, 1)
	assert.Len(t, home.Testimonials.Items, 1)
	assert.Len(t, home.Skills.Items, 2)
	assert.False(t, home.Skills.Empty())
	assert.False(t, home.Projects.Failed)
}

func TestLoadHome_FailureIsIsolated(t *testing.T) {
	src := &fakeSource{
		projects: []Project{{Title: "E-shop", Slug: "e-shop"}},
		skills:   []Skill{{Name: "Go"}},
		failing:  map[string]error{"services": errors.New("boom")},
	}

	home := LoadHome(context.Background(), src, time.Second, nil)

	assert.True(t, home.Services.Failed)
	assert.True(t, home.Services.Empty())
	assert.Len(t, home.Projects.Items, 1)
	assert.Len(t, home.Skills.Items, 1)
	assert.False(t, home.Projects.Failed)
}

func TestLoadHome_SlowSectionTimesOut(t *testing.T) {
	src := &fakeSource{
		skills: []Skill{{Name: "Go"}},
		block:  "testimonials",
	}

	start := time.Now()
	home := LoadHome(context.Background(), src, 50*time.Millisecond, nil)
	require.Less(t, time.Since(start), 2*time.Second)

	assert.True(t, home.Testimonials.Failed)
	assert.Len(t, home.Skills.Items, 1)
}

func TestLoadHome_EmptySkills(t *testing.T) {
	home := LoadHome(context.Background(), &fakeSource{}, time.Second, nil)
	assert.True(t, home.Skills.Empty())
	assert.False(t, home.Skills.Failed)
}
