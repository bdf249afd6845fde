package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// seedNamespace derives stable IDs for seeded documents without one, so
// re-importing a file updates the same documents.
var seedNamespace = uuid.MustParse("6f1c3e0a-5d2b-4c8e-9a47-2b1f0e9d7c31")

// SeedID returns the stable ID of a seeded document keyed by key.
func SeedID(typ DocType, key string) string {
	return uuid.NewSHA1(seedNamespace, []byte(string(typ)+"/"+key)).String()
}

// Bundle is the content of one or more seed files.
type Bundle struct {
	Projects     []ProjectDetail `yaml:"projects"`
	Services     []Service       `yaml:"services"`
	Testimonials []Testimonial   `yaml:"testimonials"`
	Skills       []Skill         `yaml:"skills"`
}

// Len returns the number of documents in the bundle.
func (b Bundle) Len() int {
	return len(b.Projects) + len(b.Services) + len(b.Testimonials) + len(b.Skills)
}

func (b *Bundle) merge(o Bundle) {
	b.Projects = append(b.Projects, o.Projects...)
	b.Services = append(b.Services, o.Services...)
	b.Testimonials = append(b.Testimonials, o.Testimonials...)
	b.Skills = append(b.Skills, o.Skills...)
}

// MatchFiles expands the glob patterns into a sorted, de-duplicated file
// list. Patterns support ** for recursive matching.
func MatchFiles(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// DecodeBundle parses one YAML seed document. Unknown keys are rejected.
// A file may hold several documents separated by ---.
func DecodeBundle(r io.Reader) (Bundle, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var all Bundle
	for {
		var b Bundle
		err := dec.Decode(&b)
		if errors.Is(err, io.EOF) {
			return all, nil
		}
		if err != nil {
			return Bundle{}, err
		}
		all.merge(b)
	}
}

// ReadBundles decodes and merges every file matched by patterns.
func ReadBundles(patterns []string) (Bundle, []string, error) {
	files, err := MatchFiles(patterns)
	if err != nil {
		return Bundle{}, nil, err
	}

	var all Bundle
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return Bundle{}, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		b, err := DecodeBundle(bytes.NewReader(data))
		if err != nil {
			return Bundle{}, nil, fmt.Errorf("parsing %s: %w", filepath.ToSlash(path), err)
		}
		all.merge(b)
	}
	return all, files, nil
}

// ImportStats counts the documents written by Import.
type ImportStats struct {
	Projects     int
	Services     int
	Testimonials int
	Skills       int
}

// Total returns the number of documents written.
func (s ImportStats) Total() int {
	return s.Projects + s.Services + s.Testimonials + s.Skills
}

// ProgressFunc receives import progress.
type ProgressFunc func(done, total int, label string)

// Import validates every document of the bundle and then writes them.
// Nothing is written when any document is invalid. Projects without a
// slug get one from their title.
func (s *Store) Import(ctx context.Context, b Bundle, progress ProgressFunc) (ImportStats, error) {
	if progress == nil {
		progress = func(int, int, string) {}
	}

	var errs []error
	for i := range b.Projects {
		p := &b.Projects[i]
		if p.Slug == "" {
			p.Slug = Slugify(p.Title)
		}
		if p.ID == "" {
			p.ID = SeedID(TypeProject, p.Slug)
		}
		if err := ValidateProject(*p); err != nil {
			errs = append(errs, fmt.Errorf("projects[%d]: %w", i, err))
		}
	}
	for i := range b.Services {
		v := &b.Services[i]
		if v.ID == "" {
			v.ID = SeedID(TypeService, v.Title)
		}
		if err := ValidateService(*v); err != nil {
			errs = append(errs, fmt.Errorf("services[%d]: %w", i, err))
		}
	}
	for i := range b.Testimonials {
		v := &b.Testimonials[i]
		if v.ID == "" {
			v.ID = SeedID(TypeTestimonial, v.Name)
		}
		if err := ValidateTestimonial(*v); err != nil {
			errs = append(errs, fmt.Errorf("testimonials[%d]: %w", i, err))
		}
	}
	for i := range b.Skills {
		v := &b.Skills[i]
		if v.ID == "" {
			v.ID = SeedID(TypeSkill, v.Name)
		}
		if err := ValidateSkill(*v); err != nil {
			errs = append(errs, fmt.Errorf("skills[%d]: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return ImportStats{}, errors.Join(errs...)
	}

	var stats ImportStats
	total, done := b.Len(), 0
	step := func(label string) {
		done++
		progress(done, total, label)
	}

	for _, p := range b.Projects {
		if _, err := s.SaveProject(ctx, p); err != nil {
			return stats, err
		}
		stats.Projects++
		step("project " + p.Slug)
	}
	for _, v := range b.Services {
		if _, err := s.SaveService(ctx, v); err != nil {
			return stats, err
		}
		stats.Services++
		step("service " + v.Title)
	}
	for _, v := range b.Testimonials {
		if _, err := s.SaveTestimonial(ctx, v); err != nil {
			return stats, err
		}
		stats.Testimonials++
		step("testimonial " + v.Name)
	}
	for _, v := range b.Skills {
		if _, err := s.SaveSkill(ctx, v); err != nil {
			return stats, err
		}
		stats.Skills++
		step("skill " + v.Name)
	}
	return stats, nil
}
